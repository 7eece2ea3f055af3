// Package units содержит вычислительные модули сценариев: слияние
// файлов и данных, фильтрацию атрибутов, разбиение на фолды и
// простейший классификатор. Модули создаются через реестр по имени
// из описания шага; конструктор проверяет число входов/выходов и
// обязательные параметры до запуска.
package units
