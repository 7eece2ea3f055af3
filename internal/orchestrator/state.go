package orchestrator

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
	"github.com/kadlec/mlproc/internal/plan"
)

// RunState — состояние выполнения одного run в памяти.
//
// Создаётся, когда Orchestrator берёт run в обработку, и удаляется
// при финализации run. Источник истины о зависимостях — план
// (plan.Graph); RunState дополняет его знанием о том, какие узлы
// сейчас у воркеров и какие упали.
type RunState struct {
	// Run — данные run из БД.
	Run *domain.Run

	// Version — версия experiment со сценарием.
	Version *domain.ExperimentVersion

	// Graph — план: узлы со статусами и зависимостями.
	Graph *plan.Graph

	// running — узлы, отданные воркерам (nodeID → true).
	running map[string]bool

	// failed — узлы, исчерпавшие попытки (nodeID → true).
	failed map[string]bool

	// jobs — созданные jobs (nodeID → Job).
	jobs map[string]*domain.Job

	mu sync.RWMutex
}

// NewRunState создаёт RunState без плана.
// План строится в Initialize или восстанавливается в Restore.
func NewRunState(run *domain.Run, version *domain.ExperimentVersion) *RunState {
	return &RunState{
		Run:     run,
		Version: version,
		running: make(map[string]bool),
		failed:  make(map[string]bool),
		jobs:    make(map[string]*domain.Job),
	}
}

// Initialize строит план из сценария: валидация, раскрытие шаблонов,
// проверка ацикличности.
func (s *RunState) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := plan.Build(&s.Version.Scenario)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	s.Graph = g
	return nil
}

// Restore принимает план, восстановленный из чекпойнта.
func (s *RunState) Restore(g *plan.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Graph = g
}

// ReadyNodes возвращает узлы, готовые к диспетчеризации: PENDING
// в плане, не у воркера и не упавшие.
func (s *RunState) ReadyNodes() []*plan.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ready []*plan.Node
	for _, n := range s.Graph.Pending() {
		if s.running[n.ID()] || s.failed[n.ID()] {
			continue
		}
		ready = append(ready, n)
	}
	return ready
}

// MarkNodeRunning помечает узел отданным воркеру.
func (s *RunState) MarkNodeRunning(nodeID string, job *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running[nodeID] = true
	s.jobs[nodeID] = job
}

// MarkNodeDone помечает узел выполненным. Каскад готовности
// (WAITING → PENDING у зависимых) выполняет план.
func (s *RunState) MarkNodeDone(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.Graph.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	delete(s.running, nodeID)
	s.Graph.MarkDone(n)
	return nil
}

// MarkNodeFailed помечает узел упавшим (попытки исчерпаны).
// Зависимые узлы остаются WAITING и никогда не станут PENDING.
func (s *RunState) MarkNodeFailed(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.running, nodeID)
	s.failed[nodeID] = true
}

// Job возвращает job узла.
func (s *RunState) Job(nodeID string) *domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[nodeID]
}

// SetJob запоминает job узла.
func (s *RunState) SetJob(nodeID string, job *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[nodeID] = job
}

// IsComplete сообщает, выполнен ли весь план.
func (s *RunState) IsComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.Done()
}

// HasFailed сообщает, есть ли упавшие узлы.
func (s *RunState) HasFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.failed) > 0
}

// FailedNodes возвращает список упавших узлов.
func (s *RunState) FailedNodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]string, 0, len(s.failed))
	for nodeID := range s.failed {
		nodes = append(nodes, nodeID)
	}
	return nodes
}

// Snapshot возвращает сериализуемый снимок плана для чекпойнта.
func (s *RunState) Snapshot() []plan.NodeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Graph.Snapshot()
}

// RunID возвращает ID run.
func (s *RunState) RunID() uuid.UUID {
	return s.Run.ID
}

// ExperimentID возвращает ID experiment.
func (s *RunState) ExperimentID() uuid.UUID {
	return s.Run.ExperimentID
}

// Stats возвращает статистику выполнения.
func (s *RunState) Stats() RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var done int
	total := s.Graph.Len()
	for _, n := range s.Graph.Nodes() {
		if n.Status() == plan.StatusDone {
			done++
		}
	}
	return RunStats{
		TotalNodes:   total,
		DoneNodes:    done,
		RunningNodes: len(s.running),
		FailedNodes:  len(s.failed),
		WaitingNodes: total - done - len(s.running) - len(s.failed),
	}
}

// RunStats — статистика выполнения run.
type RunStats struct {
	TotalNodes   int
	DoneNodes    int
	RunningNodes int
	FailedNodes  int
	WaitingNodes int
}

// RestoreFromJobs восстанавливает память о jobs после рестарта:
// какие узлы у воркеров, какие упали. Статусы самих узлов плана
// восстанавливаются отдельно из чекпойнта.
func (s *RunState) RestoreFromJobs(jobs []domain.Job, maxAttempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range jobs {
		job := &jobs[i]
		s.jobs[job.NodeID] = job

		switch job.Status {
		case domain.JobStatusRunning, domain.JobStatusQueued:
			s.running[job.NodeID] = true
		case domain.JobStatusFailed:
			if !job.CanRetry(maxAttempts) {
				s.failed[job.NodeID] = true
			}
		case domain.JobStatusSucceeded:
			// Узел уже DONE в чекпойнте плана.
		}
	}
}
