package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job — единица работы, отправленная воркеру.
//
// Job создаётся Orchestrator'ом, когда узел плана становится PENDING
// (все его prerequisites выполнены). Job несёт всё необходимое для
// конструирования модуля: имя модуля, параметры и конкретные
// (уже раскрытые) пути артефактов.
type Job struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// RunID — ссылка на родительский run.
	RunID uuid.UUID `json:"run_id"`

	// NodeID — ID узла плана ("train[17]" или "train[17]#fold1").
	NodeID string `json:"node_id"`

	// Unit — имя подключаемого вычислительного модуля.
	Unit string `json:"unit"`

	// Attempt — номер попытки (начиная с 1).
	// Увеличивается при retry.
	Attempt int `json:"attempt"`

	// Status — текущий статус job.
	Status JobStatus `json:"status"`

	// Params — параметры модуля (из StepDef, без изменений).
	Params map[string]string `json:"params,omitempty"`

	// Inputs — конкретные пути входных артефактов (после раскрытия
	// wildcards).
	Inputs []string `json:"inputs,omitempty"`

	// Outputs — конкретные пути выходных артефактов.
	Outputs []string `json:"outputs,omitempty"`

	// WorkDir — рабочая директория run.
	WorkDir string `json:"work_dir,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки при неудаче.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания job.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// IsFinished возвращает true, если job завершён.
func (j *Job) IsFinished() bool {
	return j.Status.IsTerminal()
}

// MarkRunning переводит job в статус RUNNING.
func (j *Job) MarkRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Attempt++
}

// MarkSucceeded переводит job в статус SUCCEEDED.
func (j *Job) MarkSucceeded() {
	now := time.Now()
	j.Status = JobStatusSucceeded
	j.FinishedAt = &now
	j.Error = ""
}

// MarkFailed переводит job в статус FAILED с ошибкой.
func (j *Job) MarkFailed(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.Error = err
}

// ResetForRetry подготавливает job для повторной попытки.
// Сбрасывает статус в QUEUED, очищает ошибку.
// Attempt увеличится при следующем MarkRunning().
func (j *Job) ResetForRetry() {
	j.Status = JobStatusQueued
	j.StartedAt = nil
	j.FinishedAt = nil
	j.Error = ""
}

// CanRetry проверяет, можно ли сделать ещё одну попытку.
func (j *Job) CanRetry(maxAttempts int) bool {
	return j.Attempt < maxAttempts
}
