// Package mq предоставляет инфраструктуру обмена сообщениями через
// RabbitMQ для конвейера экспериментов.
//
// Структура:
//   - connection.go — соединение с брокером (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues и bindings
//   - publisher.go  — публикация событий конвейера
//   - consumer.go   — потребление очередей с ручным ack
//
// События:
//   - run.pending    — создан запуск, оркестратору нужно построить план
//   - job.ready      — узел плана готов к выполнению воркером
//   - job.completed  — воркер завершил узел (успех или ошибка)
package mq
