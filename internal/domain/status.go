package domain

// RunStatus — статус выполнения run.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → SUCCEEDED
//	                  ↘ FAILED
//	          (или) → CANCELLED (из PENDING или RUNNING)
type RunStatus string

const (
	// RunStatusPending — run создан, но ещё не начал выполняться.
	RunStatusPending RunStatus = "PENDING"

	// RunStatusRunning — run в процессе выполнения.
	RunStatusRunning RunStatus = "RUNNING"

	// RunStatusSucceeded — все шаги плана завершены успешно.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — run завершился с ошибкой.
	RunStatusFailed RunStatus = "FAILED"

	// RunStatusCancelled — run отменён пользователем.
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// JobStatus — статус выполнения job.
//
// Жизненный цикл:
//
//	QUEUED → RUNNING → SUCCEEDED
//	                 ↘ FAILED (может быть retry → обратно в QUEUED)
//
// Статусы узлов плана (WAITING/PENDING/DONE) живут в пакете plan:
// job описывает попытку выполнения уже готового (PENDING) узла,
// а не готовность узла как таковую.
type JobStatus string

const (
	// JobStatusQueued — job в очереди, ожидает воркера.
	JobStatusQueued JobStatus = "QUEUED"

	// JobStatusRunning — job выполняется воркером.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusSucceeded — модуль отработал успешно.
	JobStatusSucceeded JobStatus = "SUCCEEDED"

	// JobStatusFailed — модуль завершился с ошибкой (после всех retry).
	JobStatusFailed JobStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed:
		return true
	default:
		return false
	}
}
