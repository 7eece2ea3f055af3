package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kadlec/mlproc/internal/domain"
	"github.com/kadlec/mlproc/internal/plan"
)

// RunRepo — репозиторий runs.
//
// Помимо самого run хранит чекпойнт плана (колонка plan, JSONB):
// снимок графа узлов, по которому оркестратор восстанавливает
// состояние после рестарта.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO runs (id, experiment_id, version, status, work_dir,
		                  idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.ExperimentID,
		run.Version,
		run.Status,
		nullString(run.WorkDir),
		nullString(run.IdempotencyKey),
		run.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert run: %w", ErrAlreadyExists)
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, experiment_id, version, status, work_dir, started_at,
		       finished_at, error, idempotency_key, created_at
		FROM runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey возвращает run по ключу идемпотентности.
func (r *RunRepo) GetByIdempotencyKey(ctx context.Context, experimentID uuid.UUID, key string) (*domain.Run, error) {
	query := `
		SELECT id, experiment_id, version, status, work_dir, started_at,
		       finished_at, error, idempotency_key, created_at
		FROM runs
		WHERE experiment_id = $1 AND idempotency_key = $2
	`
	return scanRun(r.pool.QueryRow(ctx, query, experimentID, key))
}

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	ExperimentID *uuid.UUID
	Status       domain.RunStatus
	Limit        int
	Offset       int
}

// List возвращает runs с фильтрацией.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	query := `
		SELECT id, experiment_id, version, status, work_dir, started_at,
		       finished_at, error, idempotency_key, created_at
		FROM runs
		WHERE ($1::uuid IS NULL OR experiment_id = $1)
		  AND ($2::text IS NULL OR status = $2::run_status)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullUUID(filter.ExperimentID),
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListPending возвращает runs в статусе PENDING, старые раньше.
// Используется оркестратором как polling fallback на случай
// потерянных сообщений.
func (r *RunRepo) ListPending(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `
		SELECT id, experiment_id, version, status, work_dir, started_at,
		       finished_at, error, idempotency_key, created_at
		FROM runs
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// Update обновляет run.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE runs
		SET status = $2, started_at = $3, finished_at = $4, error = $5
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SavePlan сохраняет чекпойнт плана run.
func (r *RunRepo) SavePlan(ctx context.Context, runID uuid.UUID, states []plan.NodeState) error {
	planJSON, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE runs SET plan = $2 WHERE id = $1
	`, runID, planJSON)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LoadPlan загружает чекпойнт плана run.
// Возвращает ErrNotFound, если run не существует или план ещё
// не сохранялся.
func (r *RunRepo) LoadPlan(ctx context.Context, runID uuid.UUID) ([]plan.NodeState, error) {
	var planJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT plan FROM runs WHERE id = $1
	`, runID).Scan(&planJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if planJSON == nil {
		return nil, ErrNotFound
	}

	var states []plan.NodeState
	if err := json.Unmarshal(planJSON, &states); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	return states, nil
}

// --- Helpers ---

func collectRuns(rows pgx.Rows) ([]domain.Run, error) {
	var runs []domain.Run
	for rows.Next() {
		run, err := scanRunRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	run, err := scanRunRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

func scanRunRow(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var workDir, runError, idempotencyKey *string

	err := row.Scan(
		&run.ID,
		&run.ExperimentID,
		&run.Version,
		&run.Status,
		&workDir,
		&run.StartedAt,
		&run.FinishedAt,
		&runError,
		&idempotencyKey,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if workDir != nil {
		run.WorkDir = *workDir
	}
	if runError != nil {
		run.Error = *runError
	}
	if idempotencyKey != nil {
		run.IdempotencyKey = *idempotencyKey
	}
	return &run, nil
}

// nullString возвращает nil для пустой строки (NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullUUID возвращает nil для пустого UUID.
func nullUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
