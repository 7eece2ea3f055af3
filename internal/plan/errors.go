package plan

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки построения и сортировки плана.
var (
	// ErrCycleDetected — зависимости узлов образуют цикл.
	ErrCycleDetected = errors.New("cycle detected in plan")

	// ErrDuplicateID — в графе уже есть узел с таким ID.
	// Защитная проверка: при счётчиковой схеме генерации ID
	// коллизия означает нарушение внутреннего инварианта.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrInputIndex — индекс входного слота вне диапазона
	// при раскрытии "***".
	ErrInputIndex = errors.New("input index out of range")

	// ErrUnknownNode — узел с таким ID отсутствует в графе.
	ErrUnknownNode = errors.New("unknown node")
)

// Ошибки валидации сценария.
var (
	// ErrEmptySteps — сценарий не содержит шагов.
	ErrEmptySteps = errors.New("scenario has no steps")

	// ErrEmptyStepName — шаг не имеет имени.
	ErrEmptyStepName = errors.New("step has empty name")

	// ErrEmptyUnit — шаг не указывает вычислительный модуль.
	ErrEmptyUnit = errors.New("step has empty unit")

	// ErrBadPattern — некорректный wildcard в пути артефакта
	// (несколько "*" в одном пути либо смешение "*" и "***").
	ErrBadPattern = errors.New("bad wildcard pattern")

	// ErrNoExpansionMatch — шаблонный шаг не раскрывается:
	// ни один конкретный артефакт не подходит под его pattern.
	ErrNoExpansionMatch = errors.New("no artifacts match expansion pattern")
)

// CycleError — детали обнаруженного цикла.
//
// Возвращается из Graph.Sort, когда полный проход не назначает
// порядок ни одному узлу, а неотсортированные узлы ещё остаются.
type CycleError struct {
	// Remaining — ID узлов, которым не удалось назначить порядок.
	Remaining []string
}

// Error реализует интерфейс error.
func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %d nodes cannot be ordered: %s",
		len(e.Remaining), strings.Join(e.Remaining, ", "))
}

// Unwrap возвращает базовую ошибку ErrCycleDetected.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

// ValidationError — ошибка валидации сценария с контекстом шага.
type ValidationError struct {
	Step    string // имя шага, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Step != "" {
		return "step " + e.Step + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(step, field, message string, err error) *ValidationError {
	return &ValidationError{
		Step:    step,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
