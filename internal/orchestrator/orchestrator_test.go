package orchestrator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
)

// chainVersion — сценарий из двух последовательных шагов:
// extract производит data.arff, train его потребляет.
func chainVersion() *domain.ExperimentVersion {
	return &domain.ExperimentVersion{
		Version: 1,
		Scenario: domain.ScenarioSpec{
			Name: "chain",
			Steps: []domain.StepDef{
				{
					Name:    "extract",
					Unit:    "file-merger",
					Inputs:  []string{"raw.txt"},
					Outputs: []string{"data.arff"},
				},
				{
					Name:    "train",
					Unit:    "majority-classifier",
					Params:  map[string]string{"mode": "train", "class": "label"},
					Inputs:  []string{"data.arff"},
					Outputs: []string{"model.json"},
				},
			},
		},
	}
}

// --- RunState Tests ---

func TestNewRunState(t *testing.T) {
	run := &domain.Run{ID: uuid.New()}
	version := &domain.ExperimentVersion{}

	state := NewRunState(run, version)

	if state.Run != run {
		t.Error("Run должен быть установлен")
	}
	if state.Version != version {
		t.Error("Version должна быть установлена")
	}
	if state.running == nil || state.failed == nil || state.jobs == nil {
		t.Error("служебные map должны быть инициализированы")
	}
}

func TestRunState_Initialize_EmptyScenario(t *testing.T) {
	run := &domain.Run{ID: uuid.New()}
	version := &domain.ExperimentVersion{
		Scenario: domain.ScenarioSpec{Steps: []domain.StepDef{}},
	}

	state := NewRunState(run, version)
	if err := state.Initialize(); err == nil {
		t.Error("пустой сценарий должен отклоняться")
	}
}

func TestRunState_InitializeBuildsPlan(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())

	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if state.Graph == nil {
		t.Fatal("план должен быть построен")
	}
	if state.Graph.Len() != 2 {
		t.Errorf("узлов в плане %d, ожидалось 2", state.Graph.Len())
	}

	// Готов только extract: train ждёт его артефакт.
	ready := state.ReadyNodes()
	if len(ready) != 1 {
		t.Fatalf("готовых узлов %d, ожидался 1", len(ready))
	}
	if ready[0].ID() != "extract[1]" {
		t.Errorf("готов %q, ожидался extract[1]", ready[0].ID())
	}
}

func TestRunState_MarkNodeDoneCascade(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	state.MarkNodeRunning("extract[1]", &domain.Job{ID: uuid.New(), NodeID: "extract[1]"})
	if len(state.ReadyNodes()) != 0 {
		t.Error("узел у воркера не должен диспетчеризоваться повторно")
	}

	if err := state.MarkNodeDone("extract[1]"); err != nil {
		t.Fatalf("MarkNodeDone: %v", err)
	}

	ready := state.ReadyNodes()
	if len(ready) != 1 || ready[0].ID() != "train[2]" {
		t.Errorf("после extract готов должен быть train[2], получено %v", ready)
	}
}

func TestRunState_MarkNodeDone_UnknownNode(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := state.MarkNodeDone("ghost[9]"); err == nil {
		t.Error("ожидалась ошибка для неизвестного узла")
	}
}

func TestRunState_MarkNodeFailed(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	state.MarkNodeRunning("extract[1]", &domain.Job{})
	state.MarkNodeFailed("extract[1]")

	if !state.HasFailed() {
		t.Error("HasFailed() = false после падения узла")
	}
	failed := state.FailedNodes()
	if len(failed) != 1 || failed[0] != "extract[1]" {
		t.Errorf("FailedNodes() = %v", failed)
	}

	// Зависимый train остаётся WAITING и не диспетчеризуется.
	if len(state.ReadyNodes()) != 0 {
		t.Error("зависимые упавшего узла не должны становиться готовыми")
	}
	if state.IsComplete() {
		t.Error("план с невыполненными узлами не должен считаться завершённым")
	}
}

func TestRunState_IsComplete(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if state.IsComplete() {
		t.Error("план не должен быть завершён сразу")
	}

	if err := state.MarkNodeDone("extract[1]"); err != nil {
		t.Fatalf("MarkNodeDone(extract): %v", err)
	}
	if state.IsComplete() {
		t.Error("план не завершён, пока train не выполнен")
	}

	if err := state.MarkNodeDone("train[2]"); err != nil {
		t.Fatalf("MarkNodeDone(train): %v", err)
	}
	if !state.IsComplete() {
		t.Error("план должен быть завершён после всех узлов")
	}
}

func TestRunState_Stats(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	stats := state.Stats()
	if stats.TotalNodes != 2 || stats.DoneNodes != 0 || stats.WaitingNodes != 2 {
		t.Errorf("начальная статистика: %+v", stats)
	}

	state.MarkNodeRunning("extract[1]", &domain.Job{})
	stats = state.Stats()
	if stats.RunningNodes != 1 || stats.WaitingNodes != 1 {
		t.Errorf("после диспетчеризации: %+v", stats)
	}

	if err := state.MarkNodeDone("extract[1]"); err != nil {
		t.Fatalf("MarkNodeDone: %v", err)
	}
	state.MarkNodeRunning("train[2]", &domain.Job{})
	state.MarkNodeFailed("train[2]")
	stats = state.Stats()
	if stats.DoneNodes != 1 || stats.FailedNodes != 1 || stats.RunningNodes != 0 {
		t.Errorf("после done+failed: %+v", stats)
	}
}

func TestRunState_RestoreFromJobs(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	jobs := []domain.Job{
		{ID: uuid.New(), NodeID: "extract[1]", Status: domain.JobStatusRunning, Attempt: 1},
		{ID: uuid.New(), NodeID: "train[2]", Status: domain.JobStatusFailed, Attempt: 3},
	}
	state.RestoreFromJobs(jobs, 3)

	if state.Job("extract[1]") == nil {
		t.Error("job узла extract[1] должен быть восстановлен")
	}
	// extract у воркера — не диспетчеризуем повторно.
	if len(state.ReadyNodes()) != 0 {
		t.Error("running узел не должен быть готов")
	}
	// train исчерпал 3 попытки из 3 — похоронен.
	if !state.HasFailed() {
		t.Error("узел с исчерпанными попытками должен считаться упавшим")
	}
}

func TestRunState_RestoreFromJobs_RetryableFailureNotBuried(t *testing.T) {
	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	jobs := []domain.Job{
		{ID: uuid.New(), NodeID: "extract[1]", Status: domain.JobStatusFailed, Attempt: 1},
	}
	state.RestoreFromJobs(jobs, 3)

	if state.HasFailed() {
		t.Error("job с оставшимися попытками не должен хоронить узел")
	}
}

func TestRunState_RunID(t *testing.T) {
	runID := uuid.New()
	expID := uuid.New()
	state := NewRunState(&domain.Run{ID: runID, ExperimentID: expID}, &domain.ExperimentVersion{})

	if state.RunID() != runID {
		t.Error("RunID() должен возвращать ID run")
	}
	if state.ExperimentID() != expID {
		t.Error("ExperimentID() должен возвращать ID experiment")
	}
}

// --- Orchestrator Tests ---

func TestNew(t *testing.T) {
	orch := New(Config{})

	if orch.activeRuns == nil {
		t.Error("activeRuns должен быть инициализирован")
	}
	if orch.pollInterval != defaultPollInterval {
		t.Errorf("pollInterval = %v, ожидалось %v", orch.pollInterval, defaultPollInterval)
	}
	if orch.batchSize != defaultBatchSize {
		t.Errorf("batchSize = %d, ожидалось %d", orch.batchSize, defaultBatchSize)
	}
	if orch.maxAttempts != defaultMaxAttempts {
		t.Errorf("maxAttempts = %d, ожидалось %d", orch.maxAttempts, defaultMaxAttempts)
	}
}

func TestNew_CustomConfig(t *testing.T) {
	orch := New(Config{
		PollInterval: 5 * time.Second,
		BatchSize:    50,
		MaxAttempts:  1,
	})

	if orch.pollInterval != 5*time.Second {
		t.Errorf("pollInterval = %v", orch.pollInterval)
	}
	if orch.batchSize != 50 {
		t.Errorf("batchSize = %d", orch.batchSize)
	}
	if orch.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d", orch.maxAttempts)
	}
}

func TestOrchestrator_ActiveRuns(t *testing.T) {
	orch := New(Config{})

	runID := uuid.New()
	state := NewRunState(&domain.Run{ID: runID}, &domain.ExperimentVersion{})

	if orch.ActiveRunsCount() != 0 {
		t.Error("активных runs изначально быть не должно")
	}
	if orch.isRunActive(runID) {
		t.Error("run не должен быть активен")
	}

	if err := orch.addActiveRun(state); err != nil {
		t.Fatalf("addActiveRun: %v", err)
	}
	if orch.ActiveRunsCount() != 1 {
		t.Error("должен быть 1 активный run")
	}
	if orch.getActiveRun(runID) != state {
		t.Error("getActiveRun должен вернуть state")
	}

	if err := orch.addActiveRun(state); err != ErrRunAlreadyActive {
		t.Errorf("повторное добавление: err = %v, ожидался ErrRunAlreadyActive", err)
	}

	orch.removeActiveRun(runID)
	if orch.isRunActive(runID) {
		t.Error("run не должен быть активен после удаления")
	}
}

func TestOrchestrator_GetActiveRunStats(t *testing.T) {
	orch := New(Config{})

	state := NewRunState(&domain.Run{ID: uuid.New()}, chainVersion())
	if err := state.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if _, ok := orch.GetActiveRunStats(state.RunID()); ok {
		t.Error("статистики для неактивного run быть не должно")
	}

	_ = orch.addActiveRun(state)
	stats, ok := orch.GetActiveRunStats(state.RunID())
	if !ok {
		t.Fatal("статистика активного run должна находиться")
	}
	if stats.TotalNodes != 2 {
		t.Errorf("TotalNodes = %d, ожидалось 2", stats.TotalNodes)
	}
}

func TestOrchestrator_IsStopped(t *testing.T) {
	orch := New(Config{})

	if orch.IsStopped() {
		t.Error("оркестратор не должен быть остановлен изначально")
	}

	orch.stoppedMu.Lock()
	orch.stopped = true
	orch.stoppedMu.Unlock()

	if !orch.IsStopped() {
		t.Error("IsStopped() = false после остановки")
	}
}
