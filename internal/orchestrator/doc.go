// Package orchestrator управляет выполнением runs.
//
// Orchestrator отвечает за:
//   - Получение новых runs из очереди RabbitMQ
//   - Построение плана из сценария (раскрытие шаблонов, сортировка)
//   - Диспетчеризацию jobs для узлов без невыполненных зависимостей
//   - Отслеживание завершения jobs и каскад готовности по плану
//   - Чекпойнт плана в БД и восстановление после рестарта
//   - Финализацию run (SUCCEEDED/FAILED)
//
// Orchestrator — это "мозг" системы, который координирует выполнение.
package orchestrator
