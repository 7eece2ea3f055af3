// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (репозитории, publisher, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (logging, recovery)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - experiment_handler.go — обработчики для /experiments
//   - run_handler.go        — обработчики для /runs
//   - schedule_handler.go   — обработчики для /schedules
//
// API предоставляет REST endpoints для управления experiments, runs
// и schedules. Сценарий новой версии эксперимента валидируется
// построением плана ещё на приёме запроса.
package api
