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
)

// JobRepo — репозиторий jobs.
type JobRepo struct {
	pool *pgxpool.Pool
}

// NewJobRepo создаёт JobRepo.
func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// Create создаёт новый job.
func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	inputsJSON, err := json.Marshal(job.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	outputsJSON, err := json.Marshal(job.Outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}

	query := `
		INSERT INTO jobs (id, run_id, node_id, unit, attempt, status,
		                  params, inputs, outputs, work_dir, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.RunID,
		job.NodeID,
		job.Unit,
		job.Attempt,
		job.Status,
		paramsJSON,
		inputsJSON,
		outputsJSON,
		nullString(job.WorkDir),
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID возвращает job по ID.
func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, run_id, node_id, unit, attempt, status, params, inputs,
		       outputs, work_dir, started_at, finished_at, error, created_at
		FROM jobs
		WHERE id = $1
	`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

// GetByRunAndNodeID возвращает job по run_id и node_id.
func (r *JobRepo) GetByRunAndNodeID(ctx context.Context, runID uuid.UUID, nodeID string) (*domain.Job, error) {
	query := `
		SELECT id, run_id, node_id, unit, attempt, status, params, inputs,
		       outputs, work_dir, started_at, finished_at, error, created_at
		FROM jobs
		WHERE run_id = $1 AND node_id = $2
	`
	return scanJob(r.pool.QueryRow(ctx, query, runID, nodeID))
}

// ListByRunID возвращает все jobs для run в порядке создания.
func (r *JobRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.Job, error) {
	query := `
		SELECT id, run_id, node_id, unit, attempt, status, params, inputs,
		       outputs, work_dir, started_at, finished_at, error, created_at
		FROM jobs
		WHERE run_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list jobs by run_id: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// ListQueued возвращает jobs в статусе QUEUED.
// Используется воркером как polling fallback.
func (r *JobRepo) ListQueued(ctx context.Context, limit int) ([]domain.Job, error) {
	query := `
		SELECT id, run_id, node_id, unit, attempt, status, params, inputs,
		       outputs, work_dir, started_at, finished_at, error, created_at
		FROM jobs
		WHERE status = 'QUEUED'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list queued jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// Update обновляет job.
func (r *JobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET attempt = $2, status = $3, started_at = $4, finished_at = $5,
		    error = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Attempt,
		job.Status,
		job.StartedAt,
		job.FinishedAt,
		nullString(job.Error),
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRunAndStatus возвращает число jobs run в заданном статусе.
func (r *JobRepo) CountByRunAndStatus(ctx context.Context, runID uuid.UUID, status domain.JobStatus) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM jobs WHERE run_id = $1 AND status = $2
	`, runID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return count, nil
}

// --- Helpers ---

func collectJobs(rows pgx.Rows) ([]domain.Job, error) {
	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	job, err := scanJobRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func scanJobRow(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var paramsJSON, inputsJSON, outputsJSON []byte
	var workDir, jobError *string

	err := row.Scan(
		&job.ID,
		&job.RunID,
		&job.NodeID,
		&job.Unit,
		&job.Attempt,
		&job.Status,
		&paramsJSON,
		&inputsJSON,
		&outputsJSON,
		&workDir,
		&job.StartedAt,
		&job.FinishedAt,
		&jobError,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	if paramsJSON != nil {
		if err := json.Unmarshal(paramsJSON, &job.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
	}
	if inputsJSON != nil {
		if err := json.Unmarshal(inputsJSON, &job.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal inputs: %w", err)
		}
	}
	if outputsJSON != nil {
		if err := json.Unmarshal(outputsJSON, &job.Outputs); err != nil {
			return nil, fmt.Errorf("unmarshal outputs: %w", err)
		}
	}
	if workDir != nil {
		job.WorkDir = *workDir
	}
	if jobError != nil {
		job.Error = *jobError
	}
	return &job, nil
}
