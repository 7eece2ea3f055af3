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

// ExperimentRepo — репозиторий experiments и experiment_versions.
type ExperimentRepo struct {
	pool *pgxpool.Pool
}

// NewExperimentRepo создаёт ExperimentRepo.
func NewExperimentRepo(pool *pgxpool.Pool) *ExperimentRepo {
	return &ExperimentRepo{pool: pool}
}

// --- Experiment CRUD ---

// Create создаёт новый experiment.
func (r *ExperimentRepo) Create(ctx context.Context, exp *domain.Experiment) error {
	query := `
		INSERT INTO experiments (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		exp.ID,
		exp.Name,
		nullString(exp.Description),
		exp.IsActive,
		exp.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert experiment %q: %w", exp.Name, ErrAlreadyExists)
		}
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

// GetByID возвращает experiment по ID.
func (r *ExperimentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Experiment, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM experiments
		WHERE id = $1
	`
	return r.scanExperiment(r.pool.QueryRow(ctx, query, id))
}

// GetByName возвращает experiment по имени.
func (r *ExperimentRepo) GetByName(ctx context.Context, name string) (*domain.Experiment, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM experiments
		WHERE name = $1
	`
	return r.scanExperiment(r.pool.QueryRow(ctx, query, name))
}

// List возвращает все experiments.
func (r *ExperimentRepo) List(ctx context.Context) ([]domain.Experiment, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM experiments
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	var exps []domain.Experiment
	for rows.Next() {
		var exp domain.Experiment
		var description *string
		if err := rows.Scan(
			&exp.ID,
			&exp.Name,
			&description,
			&exp.IsActive,
			&exp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		if description != nil {
			exp.Description = *description
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

// Update обновляет experiment.
func (r *ExperimentRepo) Update(ctx context.Context, exp *domain.Experiment) error {
	query := `
		UPDATE experiments
		SET name = $2, description = $3, is_active = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		exp.ID, exp.Name, nullString(exp.Description), exp.IsActive)
	if err != nil {
		return fmt.Errorf("update experiment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет experiment (каскадно удалит versions, runs, schedules).
func (r *ExperimentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM experiments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete experiment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- ExperimentVersion CRUD ---

// CreateVersion создаёт новую версию experiment.
// Номер версии инкрементируется автоматически.
func (r *ExperimentRepo) CreateVersion(ctx context.Context, experimentID uuid.UUID, scenario domain.ScenarioSpec) (*domain.ExperimentVersion, error) {
	scenarioJSON, err := json.Marshal(scenario)
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}

	var nextVersion int
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM experiment_versions
		WHERE experiment_id = $1
	`, experimentID).Scan(&nextVersion)
	if err != nil {
		return nil, fmt.Errorf("get next version: %w", err)
	}

	var version domain.ExperimentVersion
	err = r.pool.QueryRow(ctx, `
		INSERT INTO experiment_versions (experiment_id, version, scenario, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING experiment_id, version, created_at
	`, experimentID, nextVersion, scenarioJSON).Scan(
		&version.ExperimentID,
		&version.Version,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert experiment version: %w", err)
	}
	version.Scenario = scenario

	return &version, nil
}

// GetVersion возвращает конкретную версию experiment.
func (r *ExperimentRepo) GetVersion(ctx context.Context, experimentID uuid.UUID, version int) (*domain.ExperimentVersion, error) {
	query := `
		SELECT experiment_id, version, scenario, created_at
		FROM experiment_versions
		WHERE experiment_id = $1 AND version = $2
	`
	return r.scanVersion(r.pool.QueryRow(ctx, query, experimentID, version))
}

// GetLatestVersion возвращает последнюю версию experiment.
func (r *ExperimentRepo) GetLatestVersion(ctx context.Context, experimentID uuid.UUID) (*domain.ExperimentVersion, error) {
	query := `
		SELECT experiment_id, version, scenario, created_at
		FROM experiment_versions
		WHERE experiment_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return r.scanVersion(r.pool.QueryRow(ctx, query, experimentID))
}

// ListVersions возвращает все версии experiment.
func (r *ExperimentRepo) ListVersions(ctx context.Context, experimentID uuid.UUID) ([]domain.ExperimentVersion, error) {
	query := `
		SELECT experiment_id, version, scenario, created_at
		FROM experiment_versions
		WHERE experiment_id = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("list experiment versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.ExperimentVersion
	for rows.Next() {
		var ev domain.ExperimentVersion
		var scenarioJSON []byte
		if err := rows.Scan(
			&ev.ExperimentID,
			&ev.Version,
			&scenarioJSON,
			&ev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan experiment version: %w", err)
		}
		if err := json.Unmarshal(scenarioJSON, &ev.Scenario); err != nil {
			return nil, fmt.Errorf("unmarshal scenario: %w", err)
		}
		versions = append(versions, ev)
	}
	return versions, rows.Err()
}

// --- Helpers ---

func (r *ExperimentRepo) scanExperiment(row pgx.Row) (*domain.Experiment, error) {
	var exp domain.Experiment
	var description *string

	err := row.Scan(
		&exp.ID,
		&exp.Name,
		&description,
		&exp.IsActive,
		&exp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan experiment: %w", err)
	}
	if description != nil {
		exp.Description = *description
	}
	return &exp, nil
}

func (r *ExperimentRepo) scanVersion(row pgx.Row) (*domain.ExperimentVersion, error) {
	var ev domain.ExperimentVersion
	var scenarioJSON []byte

	err := row.Scan(
		&ev.ExperimentID,
		&ev.Version,
		&scenarioJSON,
		&ev.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan experiment version: %w", err)
	}
	if err := json.Unmarshal(scenarioJSON, &ev.Scenario); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}
	return &ev, nil
}
