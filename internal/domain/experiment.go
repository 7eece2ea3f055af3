package domain

import (
	"time"

	"github.com/google/uuid"
)

// Experiment — определение эксперимента.
//
// Experiment — это именованный контейнер для сценариев обработки данных
// (извлечение признаков, обучение, оценка). Один experiment может иметь
// множество версий (ExperimentVersion). Каждый запуск (Run) выполняет
// конкретную версию.
type Experiment struct {
	// ID — уникальный идентификатор эксперимента.
	ID uuid.UUID `json:"id"`

	// Name — уникальное имя эксперимента (например, "srl-baseline",
	// "pos-tagging-cv"). Используется для идентификации пользователем.
	Name string `json:"name"`

	// Description — описание назначения эксперимента.
	Description string `json:"description,omitempty"`

	// IsActive — флаг активности. Неактивные experiments не запускаются
	// по расписанию.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания эксперимента.
	CreatedAt time.Time `json:"created_at"`
}

// ExperimentVersion — версия эксперимента с конкретным сценарием.
//
// Версии неизменяемы: правка сценария всегда создаёт новую версию.
// Это позволяет воспроизводить старые запуски и сравнивать результаты.
type ExperimentVersion struct {
	// ExperimentID — ссылка на родительский experiment.
	ExperimentID uuid.UUID `json:"experiment_id"`

	// Version — номер версии (1, 2, 3, ...).
	// Автоинкремент при создании новой версии.
	Version int `json:"version"`

	// Scenario — сценарий эксперимента (содержимое JSONB поля scenario).
	Scenario ScenarioSpec `json:"scenario"`

	// CreatedAt — время создания версии.
	CreatedAt time.Time `json:"created_at"`
}
