// Package worker выполняет отдельные jobs.
//
// # Обзор
//
// Worker — stateless компонент системы mlproc, который выполняет
// отдельные jobs, созданные Orchestrator'ом. Worker отвечает за:
//
//   - Получение jobs из очереди RabbitMQ (event-driven)
//   - Периодическую проверку queued jobs в БД (polling fallback)
//   - Конструирование вычислительного модуля (unit) по имени из job
//   - Выполнение модуля с таймаутом
//   - Отправку результата обратно в очередь jobs.completed
//
// Workers масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди jobs.ready. Единственное требование —
// общая файловая система для артефактов (общий WorkDir).
//
// # Обработка job
//
//  1. Получение job (из очереди или polling)
//  2. Загрузка job из БД, проверка статуса QUEUED
//  3. Перевод в RUNNING, инкремент Attempt
//  4. Конструирование модуля через units.Registry
//  5. Perform с таймаутом
//  6. Успех → MarkSucceeded, publish JobCompleted(SUCCEEDED)
//  7. Ошибка → MarkFailed, publish JobCompleted(FAILED)
//
// # Retry
//
// Воркер НЕ повторяет упавшие jobs сам: он честно сообщает FAILED,
// а решение о повторной попытке (requeue с инкрементом Attempt)
// принимает Orchestrator. Так подсчёт попыток живёт в одном месте
// и переживает падение воркера.
//
// # Ошибки
//
// Ошибка конструирования модуля (неизвестное имя, неверная арность,
// плохие параметры) — терминальная: retry бессмыслен, job всё равно
// помечается FAILED и оркестратор исчерпает попытки. Различение
// "стоит ли повторять" по типу ошибки оставлено оркестратору.
package worker
