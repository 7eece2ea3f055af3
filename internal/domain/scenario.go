package domain

// ScenarioSpec — сценарий эксперимента (декларативное описание шагов).
//
// Это "программа" для mlproc: набор именованных шагов с объявленными
// входными и выходными артефактами. Порядок выполнения не задаётся
// явно — он выводится планировщиком из совпадений путей артефактов.
type ScenarioSpec struct {
	// Version — версия формата сценария (для обратной совместимости).
	Version string `json:"version,omitempty"`

	// Name — имя сценария (дублирует Experiment.Name для удобства).
	Name string `json:"name,omitempty"`

	// Description — описание назначения сценария.
	Description string `json:"description,omitempty"`

	// WorkDir — рабочая директория для относительных путей артефактов.
	// Если пусто, используется рабочая директория run.
	WorkDir string `json:"work_dir,omitempty"`

	// Steps — список шагов. Каждый шаг может быть шаблоном:
	// входной путь с одним "*" раскрывается в N конкретных шагов,
	// по одному на каждый подходящий артефакт.
	Steps []StepDef `json:"steps"`
}

// StepDef — определение одного шага сценария.
//
// Шаг ссылается на подключаемый вычислительный модуль (unit) по имени
// и объявляет свои артефакты. Сам граф зависимостей строится в пакете
// plan по совпадению выходных путей одних шагов со входными других.
type StepDef struct {
	// Name — человекочитаемое имя шага. Глобальный ID узла плана
	// порождается из него добавлением счётчика: "train[17]".
	Name string `json:"name"`

	// Unit — имя подключаемого вычислительного модуля
	// (например, "file-merger", "attribute-filter").
	Unit string `json:"unit"`

	// Params — параметры модуля. Непрозрачны для планировщика,
	// передаются модулю без изменений.
	Params map[string]string `json:"params,omitempty"`

	// Inputs — упорядоченные пути входных артефактов.
	// Путь может содержать единственный wildcard "*" (шаблонный шаг)
	// либо "***" (раскрытие по одному выбранному слоту).
	Inputs []string `json:"inputs,omitempty"`

	// Outputs — упорядоченные пути выходных артефактов.
	Outputs []string `json:"outputs,omitempty"`
}
