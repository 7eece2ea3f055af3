package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Experiments
	mux.Handle("GET /api/v1/experiments", chain(http.HandlerFunc(h.ListExperiments)))
	mux.Handle("POST /api/v1/experiments", chain(http.HandlerFunc(h.CreateExperiment)))
	mux.Handle("GET /api/v1/experiments/{id}", chain(http.HandlerFunc(h.GetExperiment)))
	mux.Handle("PUT /api/v1/experiments/{id}", chain(http.HandlerFunc(h.UpdateExperiment)))
	mux.Handle("DELETE /api/v1/experiments/{id}", chain(http.HandlerFunc(h.DeleteExperiment)))

	// Experiment Versions
	mux.Handle("GET /api/v1/experiments/{id}/versions", chain(http.HandlerFunc(h.ListExperimentVersions)))
	mux.Handle("POST /api/v1/experiments/{id}/versions", chain(http.HandlerFunc(h.CreateExperimentVersion)))
	mux.Handle("GET /api/v1/experiments/{id}/versions/{version}", chain(http.HandlerFunc(h.GetExperimentVersion)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("POST /api/v1/experiments/{id}/runs", chain(http.HandlerFunc(h.CreateRun)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))
	mux.Handle("POST /api/v1/runs/{id}/cancel", chain(http.HandlerFunc(h.CancelRun)))
	mux.Handle("GET /api/v1/runs/{id}/jobs", chain(http.HandlerFunc(h.ListRunJobs)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/experiments/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}", chain(http.HandlerFunc(h.UpdateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
