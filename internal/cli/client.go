package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// ExperimentResponse — experiment из API.
type ExperimentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// VersionResponse — версия experiment из API.
type VersionResponse struct {
	ExperimentID string         `json:"experiment_id"`
	Version      int            `json:"version"`
	Scenario     map[string]any `json:"scenario"`
	CreatedAt    string         `json:"created_at"`
}

// RunResponse — run из API.
type RunResponse struct {
	ID             string `json:"id"`
	ExperimentID   string `json:"experiment_id"`
	Version        int    `json:"version"`
	Status         string `json:"status"`
	WorkDir        string `json:"work_dir,omitempty"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Error          string `json:"error,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// JobResponse — job из API.
type JobResponse struct {
	ID         string            `json:"id"`
	RunID      string            `json:"run_id"`
	NodeID     string            `json:"node_id"`
	Unit       string            `json:"unit"`
	Attempt    int               `json:"attempt"`
	Status     string            `json:"status"`
	Params     map[string]string `json:"params,omitempty"`
	Inputs     []string          `json:"inputs,omitempty"`
	Outputs    []string          `json:"outputs,omitempty"`
	StartedAt  string            `json:"started_at,omitempty"`
	FinishedAt string            `json:"finished_at,omitempty"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// ScheduleResponse — schedule из API.
type ScheduleResponse struct {
	ID           string `json:"id"`
	ExperimentID string `json:"experiment_id"`
	Name         string `json:"name"`
	CronExpr     string `json:"cron_expr,omitempty"`
	IntervalSec  int    `json:"interval_sec,omitempty"`
	Timezone     string `json:"timezone"`
	Enabled      bool   `json:"enabled"`
	NextDueAt    string `json:"next_due_at,omitempty"`
	LastRunAt    string `json:"last_run_at,omitempty"`
	LastRunID    string `json:"last_run_id,omitempty"`
	WorkDir      string `json:"work_dir,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// --- Request types ---

// CreateExperimentRequest — создание experiment.
type CreateExperimentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateExperimentRequest — обновление experiment.
type UpdateExperimentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateRunRequest — создание run.
type CreateRunRequest struct {
	Version        *int   `json:"version,omitempty"`
	WorkDir        string `json:"work_dir,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CreateScheduleRequest — создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
	WorkDir     string `json:"work_dir,omitempty"`
}

// UpdateScheduleRequest — обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
	WorkDir     *string `json:"work_dir,omitempty"`
}

// ListRunsOpts — параметры фильтрации runs.
type ListRunsOpts struct {
	ExperimentID string
	Status       string
	Limit        int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для mlproc API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Experiments ---

// ListExperiments возвращает все experiments.
func (c *Client) ListExperiments() ([]ExperimentResponse, error) {
	var experiments []ExperimentResponse
	err := c.list("/api/v1/experiments", nil, &experiments)
	return experiments, err
}

// CreateExperiment создаёт новый experiment.
func (c *Client) CreateExperiment(req CreateExperimentRequest) (*ExperimentResponse, error) {
	var exp ExperimentResponse
	err := c.post("/api/v1/experiments", req, &exp)
	return &exp, err
}

// GetExperiment возвращает experiment по ID.
func (c *Client) GetExperiment(id string) (*ExperimentResponse, error) {
	var exp ExperimentResponse
	err := c.get("/api/v1/experiments/"+id, &exp)
	return &exp, err
}

// UpdateExperiment обновляет experiment.
func (c *Client) UpdateExperiment(id string, req UpdateExperimentRequest) (*ExperimentResponse, error) {
	var exp ExperimentResponse
	err := c.put("/api/v1/experiments/"+id, req, &exp)
	return &exp, err
}

// DeleteExperiment удаляет experiment.
func (c *Client) DeleteExperiment(id string) error {
	return c.delete("/api/v1/experiments/" + id)
}

// ListVersions возвращает версии experiment.
func (c *Client) ListVersions(experimentID string) ([]VersionResponse, error) {
	var versions []VersionResponse
	err := c.list("/api/v1/experiments/"+experimentID+"/versions", nil, &versions)
	return versions, err
}

// CreateVersion создаёт новую версию experiment.
func (c *Client) CreateVersion(experimentID string, scenario json.RawMessage) (*VersionResponse, error) {
	body := map[string]json.RawMessage{"scenario": scenario}
	var version VersionResponse
	err := c.post("/api/v1/experiments/"+experimentID+"/versions", body, &version)
	return &version, err
}

// --- Runs ---

// ListRuns возвращает список runs с фильтрацией.
func (c *Client) ListRuns(opts ListRunsOpts) ([]RunResponse, error) {
	params := url.Values{}
	if opts.ExperimentID != "" {
		params.Set("experiment_id", opts.ExperimentID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var runs []RunResponse
	err := c.list("/api/v1/runs", params, &runs)
	return runs, err
}

// CreateRun создаёт run для experiment.
func (c *Client) CreateRun(experimentID string, req CreateRunRequest) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/experiments/"+experimentID+"/runs", req, &run)
	return &run, err
}

// GetRun возвращает run по ID.
func (c *Client) GetRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.get("/api/v1/runs/"+id, &run)
	return &run, err
}

// CancelRun отменяет run.
func (c *Client) CancelRun(id string) (*RunResponse, error) {
	var run RunResponse
	err := c.post("/api/v1/runs/"+id+"/cancel", nil, &run)
	return &run, err
}

// ListJobs возвращает jobs для run.
func (c *Client) ListJobs(runID string) ([]JobResponse, error) {
	var jobs []JobResponse
	err := c.list("/api/v1/runs/"+runID+"/jobs", nil, &jobs)
	return jobs, err
}

// --- Schedules ---

// ListSchedules возвращает schedules. Если experimentID не пустой — фильтрует.
func (c *Client) ListSchedules(experimentID string) ([]ScheduleResponse, error) {
	params := url.Values{}
	if experimentID != "" {
		params.Set("experiment_id", experimentID)
	}

	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", params, &schedules)
	return schedules, err
}

// CreateSchedule создаёт schedule для experiment.
func (c *Client) CreateSchedule(experimentID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/experiments/"+experimentID+"/schedules", req, &schedule)
	return &schedule, err
}

// GetSchedule возвращает schedule по ID.
func (c *Client) GetSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.get("/api/v1/schedules/"+id, &schedule)
	return &schedule, err
}

// UpdateSchedule обновляет schedule.
func (c *Client) UpdateSchedule(id string, req UpdateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.put("/api/v1/schedules/"+id, req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет schedule.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// EnableSchedule включает schedule.
func (c *Client) EnableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": true}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// DisableSchedule выключает schedule.
func (c *Client) DisableSchedule(id string) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	body := map[string]bool{"enabled": false}
	err := c.put("/api/v1/schedules/"+id+"/enabled", body, &schedule)
	return &schedule, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
