package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
)

// Experiment DTOs

// CreateExperimentRequest — запрос на создание experiment.
type CreateExperimentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateExperimentRequest — запрос на обновление experiment.
type UpdateExperimentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ExperimentResponse — ответ с experiment.
type ExperimentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExperimentFromDomain конвертирует domain.Experiment в ExperimentResponse.
func ExperimentFromDomain(e domain.Experiment) ExperimentResponse {
	return ExperimentResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
	}
}

// ExperimentVersion DTOs

// CreateVersionRequest — запрос на создание версии experiment.
type CreateVersionRequest struct {
	Scenario domain.ScenarioSpec `json:"scenario"`
}

// VersionResponse — ответ с версией experiment.
type VersionResponse struct {
	ExperimentID uuid.UUID           `json:"experiment_id"`
	Version      int                 `json:"version"`
	Scenario     domain.ScenarioSpec `json:"scenario"`
	CreatedAt    time.Time           `json:"created_at"`
}

// VersionFromDomain конвертирует domain.ExperimentVersion в VersionResponse.
func VersionFromDomain(v domain.ExperimentVersion) VersionResponse {
	return VersionResponse{
		ExperimentID: v.ExperimentID,
		Version:      v.Version,
		Scenario:     v.Scenario,
		CreatedAt:    v.CreatedAt,
	}
}

// Run DTOs

// CreateRunRequest — запрос на создание run.
type CreateRunRequest struct {
	Version        *int   `json:"version,omitempty"`
	WorkDir        string `json:"work_dir,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID             uuid.UUID  `json:"id"`
	ExperimentID   uuid.UUID  `json:"experiment_id"`
	Version        int        `json:"version"`
	Status         string     `json:"status"`
	WorkDir        string     `json:"work_dir,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Error          string     `json:"error,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:             r.ID,
		ExperimentID:   r.ExperimentID,
		Version:        r.Version,
		Status:         string(r.Status),
		WorkDir:        r.WorkDir,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Error:          r.Error,
		IdempotencyKey: r.IdempotencyKey,
		CreatedAt:      r.CreatedAt,
	}
}

// Job DTOs

// JobResponse — ответ с job.
type JobResponse struct {
	ID         uuid.UUID         `json:"id"`
	RunID      uuid.UUID         `json:"run_id"`
	NodeID     string            `json:"node_id"`
	Unit       string            `json:"unit"`
	Attempt    int               `json:"attempt"`
	Status     string            `json:"status"`
	Params     map[string]string `json:"params,omitempty"`
	Inputs     []string          `json:"inputs,omitempty"`
	Outputs    []string          `json:"outputs,omitempty"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j domain.Job) JobResponse {
	return JobResponse{
		ID:         j.ID,
		RunID:      j.RunID,
		NodeID:     j.NodeID,
		Unit:       j.Unit,
		Attempt:    j.Attempt,
		Status:     string(j.Status),
		Params:     j.Params,
		Inputs:     j.Inputs,
		Outputs:    j.Outputs,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
		CreatedAt:  j.CreatedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
	WorkDir     string `json:"work_dir,omitempty"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	WorkDir     *string `json:"work_dir,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID           uuid.UUID  `json:"id"`
	ExperimentID uuid.UUID  `json:"experiment_id"`
	Name         string     `json:"name"`
	CronExpr     string     `json:"cron_expr,omitempty"`
	IntervalSec  int        `json:"interval_sec,omitempty"`
	Timezone     string     `json:"timezone"`
	Enabled      bool       `json:"enabled"`
	NextDueAt    *time.Time `json:"next_due_at,omitempty"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	LastRunID    *uuid.UUID `json:"last_run_id,omitempty"`
	WorkDir      string     `json:"work_dir,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:           s.ID,
		ExperimentID: s.ExperimentID,
		Name:         s.Name,
		CronExpr:     s.CronExpr,
		IntervalSec:  s.IntervalSec,
		Timezone:     s.Timezone,
		Enabled:      s.Enabled,
		NextDueAt:    s.NextDueAt,
		LastRunAt:    s.LastRunAt,
		LastRunID:    s.LastRunID,
		WorkDir:      s.WorkDir,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
