package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
	"github.com/kadlec/mlproc/internal/plan"
)

// ListExperiments возвращает список всех experiments.
// GET /api/v1/experiments
func (h *Handler) ListExperiments(w http.ResponseWriter, r *http.Request) {
	experiments, err := h.expRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ExperimentResponse, len(experiments))
	for i, e := range experiments {
		result[i] = ExperimentFromDomain(e)
	}

	List(w, result, len(result))
}

// CreateExperiment создаёт новый experiment.
// POST /api/v1/experiments
func (h *Handler) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req CreateExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	exp := &domain.Experiment{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    false,
	}

	if err := h.expRepo.Create(r.Context(), exp); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, ExperimentFromDomain(*exp))
}

// GetExperiment возвращает experiment по ID.
// GET /api/v1/experiments/{id}
func (h *Handler) GetExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	exp, err := h.expRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "experiment not found") {
		return
	}

	Success(w, ExperimentFromDomain(*exp))
}

// UpdateExperiment обновляет experiment.
// PUT /api/v1/experiments/{id}
func (h *Handler) UpdateExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	var req UpdateExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	exp, err := h.expRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "experiment not found") {
		return
	}

	if req.Name != nil {
		exp.Name = *req.Name
	}
	if req.Description != nil {
		exp.Description = *req.Description
	}
	if req.IsActive != nil {
		exp.IsActive = *req.IsActive
	}

	if err := h.expRepo.Update(r.Context(), exp); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ExperimentFromDomain(*exp))
}

// DeleteExperiment удаляет experiment.
// DELETE /api/v1/experiments/{id}
func (h *Handler) DeleteExperiment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	if err := h.expRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "experiment not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// ListExperimentVersions возвращает список версий experiment.
// GET /api/v1/experiments/{id}/versions
func (h *Handler) ListExperimentVersions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	// Проверяем, что experiment существует
	_, err = h.expRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "experiment not found") {
		return
	}

	versions, err := h.expRepo.ListVersions(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]VersionResponse, len(versions))
	for i, v := range versions {
		result[i] = VersionFromDomain(v)
	}

	List(w, result, len(result))
}

// CreateExperimentVersion создаёт новую версию experiment.
// POST /api/v1/experiments/{id}/versions
//
// Сценарий проверяется построением плана: некорректные wildcards,
// циклы по артефактам и пустые шаги отклоняются сразу, а не при запуске.
func (h *Handler) CreateExperimentVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	var req CreateVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if _, err := plan.Build(&req.Scenario); err != nil {
		BadRequest(w, fmt.Sprintf("invalid scenario: %v", err))
		return
	}

	// Проверяем, что experiment существует
	_, err = h.expRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "experiment not found") {
		return
	}

	version, err := h.expRepo.CreateVersion(r.Context(), id, req.Scenario)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, VersionFromDomain(*version))
}

// GetExperimentVersion возвращает конкретную версию experiment.
// GET /api/v1/experiments/{id}/versions/{version}
func (h *Handler) GetExperimentVersion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid experiment id")
		return
	}

	versionNum, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		BadRequest(w, "invalid version number")
		return
	}

	version, err := h.expRepo.GetVersion(r.Context(), id, versionNum)
	if HandleRepoError(w, h.logger, err, "experiment version not found") {
		return
	}

	Success(w, VersionFromDomain(*version))
}
