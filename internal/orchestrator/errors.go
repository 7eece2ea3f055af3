package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrRunNotFound — run не найден в БД.
	ErrRunNotFound = errors.New("run not found")

	// ErrVersionNotFound — версия experiment не найдена.
	ErrVersionNotFound = errors.New("experiment version not found")

	// ErrInvalidScenario — сценарий не прошёл валидацию или
	// не раскрылся в план.
	ErrInvalidScenario = errors.New("invalid scenario")

	// ErrRunAlreadyActive — run уже обрабатывается.
	ErrRunAlreadyActive = errors.New("run already being processed")

	// ErrRunNotPending — run не в статусе PENDING.
	ErrRunNotPending = errors.New("run is not in PENDING status")

	// ErrJobNotFound — job не найден.
	ErrJobNotFound = errors.New("job not found")

	// ErrNodeNotFound — узел не найден в плане.
	ErrNodeNotFound = errors.New("node not found in plan")
)
