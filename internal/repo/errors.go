package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки хранилища. Репозитории пакета транслируют ошибки pgx в эти
// значения, чтобы вызывающий код (API, orchestrator, scheduler)
// сравнивал через errors.Is, не зная о драйвере.
var (
	// ErrNotFound — строка отсутствует; возвращается вместо pgx.ErrNoRows.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — нарушение уникальности: имя эксперимента,
	// idempotency key и т.п.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — переход статуса, запрещённый доменной моделью.
	ErrInvalidState = errors.New("invalid state")
)

// isUniqueViolation — нарушение unique-констрейнта Postgres (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
