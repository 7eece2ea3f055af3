package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("23505 must be recognized as unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("insert experiment: %w", unique)) {
		t.Error("wrapped 23505 must be recognized")
	}

	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Error("plain errors are not unique violations")
	}
}
