// Package domain содержит основные типы данных mlproc:
// Experiment, ExperimentVersion, ScenarioSpec, Run, Job, Schedule.
//
// Типы domain не содержат бизнес-логики планирования — граф шагов
// и его планировщик живут в пакете plan.
package domain
