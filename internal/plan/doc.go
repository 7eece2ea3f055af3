// Package plan реализует ядро mlproc: граф зависимостей шагов
// эксперимента и его планировщик.
//
// Жизненный цикл плана:
//
//  1. Сценарий (domain.ScenarioSpec) превращается в шаблонные узлы.
//  2. Шаблонные узлы с wildcard-путями раскрываются в конкретные
//     узлы (по одному на fold / файл данных).
//  3. Узлы связываются рёбрами по совпадению путей артефактов:
//     выход одного шага == вход другого.
//  4. Топологическая сортировка назначает каждому узлу номер стадии
//     и обнаруживает циклы.
//  5. Внешний исполнитель забирает PENDING узлы, а по завершении
//     вызывает MarkDone — статус каскадно разблокирует зависимые узлы.
//
// Граф — единственный владелец узлов: рёбра хранятся как множества
// идентификаторов, а не прямые ссылки, поэтому план сериализуем
// без циклов в объектном графе.
package plan
