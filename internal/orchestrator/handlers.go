package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
	"github.com/kadlec/mlproc/internal/mq"
	"github.com/kadlec/mlproc/internal/plan"
	"github.com/kadlec/mlproc/internal/repo"
	"github.com/kadlec/mlproc/internal/telemetry"
)

// handleRunPending обрабатывает событие о новом pending run.
func (o *Orchestrator) handleRunPending(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.RunPendingPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse run.pending payload", "error", err)
		return err
	}

	o.logger.Debug("received run.pending event", "run_id", payload.RunID)

	if o.isRunActive(payload.RunID) {
		o.logger.Debug("run already active, skipping", "run_id", payload.RunID)
		return nil
	}

	if err := o.processRun(ctx, payload.RunID); err != nil {
		if errors.Is(err, ErrRunNotPending) || errors.Is(err, ErrRunAlreadyActive) {
			o.logger.Debug("run not processed", "run_id", payload.RunID, "reason", err)
			return nil
		}
		o.logger.Error("failed to process run", "run_id", payload.RunID, "error", err)
		return err
	}
	return nil
}

// handleJobCompleted обрабатывает событие о завершённом job.
func (o *Orchestrator) handleJobCompleted(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobCompletedPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse job.completed payload", "error", err)
		return err
	}

	o.logger.Debug("received job.completed event",
		"job_id", payload.JobID,
		"run_id", payload.RunID,
		"node_id", payload.NodeID,
		"status", payload.Status,
	)

	if err := o.processJobCompleted(ctx, payload); err != nil {
		o.logger.Error("failed to process job completion",
			"job_id", payload.JobID,
			"run_id", payload.RunID,
			"error", err,
		)
		return err
	}
	return nil
}

// processRun берёт новый run в обработку: строит план, переводит
// run в RUNNING, сохраняет чекпойнт и диспетчеризует первые узлы.
func (o *Orchestrator) processRun(ctx context.Context, runID uuid.UUID) error {
	run, err := o.runRepo.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	if run.Status != domain.RunStatusPending {
		return ErrRunNotPending
	}

	version, err := o.expRepo.GetVersion(ctx, run.ExperimentID, run.Version)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return o.failRun(ctx, run, fmt.Sprintf("experiment version not found: %s v%d",
				run.ExperimentID, run.Version))
		}
		return fmt.Errorf("get experiment version: %w", err)
	}

	state := NewRunState(run, version)
	if err := state.Initialize(); err != nil {
		return o.failRun(ctx, run, fmt.Sprintf("plan build failed: %v", err))
	}

	if err := o.addActiveRun(state); err != nil {
		return err
	}

	run.MarkRunning()
	if err := o.runRepo.Update(ctx, run); err != nil {
		o.removeActiveRun(runID)
		return fmt.Errorf("update run to running: %w", err)
	}

	o.checkpoint(ctx, state)
	telemetry.RunsStarted.Inc()
	telemetry.PlanNodes.Observe(float64(state.Graph.Len()))

	o.logger.Info("run started",
		"run_id", runID,
		"experiment_id", run.ExperimentID,
		"version", run.Version,
		"nodes", state.Graph.Len(),
	)

	if err := o.dispatchReadyNodes(ctx, state); err != nil {
		o.logger.Error("failed to dispatch initial nodes", "run_id", runID, "error", err)
		// Не удаляем из активных: доберём при следующем событии.
	}
	return nil
}

// processJobCompleted обрабатывает завершение job: при успехе
// отмечает узел выполненным (план будит зависимые), при неудаче
// ретраит job или хоронит узел.
func (o *Orchestrator) processJobCompleted(ctx context.Context, payload mq.JobCompletedPayload) error {
	state := o.getActiveRun(payload.RunID)
	if state == nil {
		var err error
		state, err = o.restoreRunState(ctx, payload.RunID)
		if err != nil {
			return fmt.Errorf("restore run state: %w", err)
		}
		if state == nil {
			// Run уже завершён или не существует.
			o.logger.Debug("run not active and cannot restore", "run_id", payload.RunID)
			return nil
		}
	}

	job, err := o.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, payload.JobID)
		}
		return fmt.Errorf("get job: %w", err)
	}

	if payload.Status == string(domain.JobStatusSucceeded) {
		if err := state.MarkNodeDone(payload.NodeID); err != nil {
			return err
		}
		o.checkpoint(ctx, state)
		o.logger.Debug("node done",
			"run_id", payload.RunID,
			"node_id", payload.NodeID,
		)
	} else {
		if job.CanRetry(o.maxAttempts) {
			return o.retryJob(ctx, state, job)
		}
		state.MarkNodeFailed(payload.NodeID)
		o.logger.Warn("node failed, attempts exhausted",
			"run_id", payload.RunID,
			"node_id", payload.NodeID,
			"attempt", job.Attempt,
			"error", payload.Error,
		)
	}

	if state.HasFailed() {
		return o.completeRun(ctx, state, false)
	}
	if state.IsComplete() {
		return o.completeRun(ctx, state, true)
	}
	return o.dispatchReadyNodes(ctx, state)
}

// retryJob возвращает упавший job в очередь на новую попытку.
// Узел остаётся помеченным как выполняющийся, поэтому повторная
// диспетчеризация не создаст дубликат.
func (o *Orchestrator) retryJob(ctx context.Context, state *RunState, job *domain.Job) error {
	job.ResetForRetry()
	if err := o.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("reset job for retry: %w", err)
	}

	o.logger.Info("job requeued for retry",
		"job_id", job.ID,
		"run_id", job.RunID,
		"node_id", job.NodeID,
		"attempt", job.Attempt,
	)

	if o.publisher != nil {
		if err := o.publisher.PublishJobReady(ctx, job.ID, job.RunID); err != nil {
			o.logger.Warn("failed to publish job.ready for retry",
				"job_id", job.ID,
				"error", err,
			)
			// Job в статусе QUEUED, воркер заберёт через polling.
		}
	}
	return nil
}

// dispatchReadyNodes создаёт jobs для готовых узлов плана.
func (o *Orchestrator) dispatchReadyNodes(ctx context.Context, state *RunState) error {
	ready := state.ReadyNodes()
	if len(ready) == 0 {
		return nil
	}

	o.logger.Debug("dispatching ready nodes",
		"run_id", state.RunID(),
		"count", len(ready),
	)

	for _, node := range ready {
		if err := o.dispatchNode(ctx, state, node); err != nil {
			o.logger.Error("failed to dispatch node",
				"run_id", state.RunID(),
				"node_id", node.ID(),
				"error", err,
			)
			// Продолжаем с остальными узлами.
		}
	}
	return nil
}

// dispatchNode создаёт job для узла и публикует событие воркерам.
func (o *Orchestrator) dispatchNode(ctx context.Context, state *RunState, node *plan.Node) error {
	job := &domain.Job{
		ID:        uuid.New(),
		RunID:     state.RunID(),
		NodeID:    node.ID(),
		Unit:      node.Unit,
		Attempt:   0,
		Status:    domain.JobStatusQueued,
		Params:    node.Params,
		Inputs:    node.Inputs,
		Outputs:   node.Outputs,
		WorkDir:   state.Run.WorkDir,
		CreatedAt: time.Now(),
	}

	if err := o.jobRepo.Create(ctx, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	state.MarkNodeRunning(node.ID(), job)
	telemetry.JobsDispatched.WithLabelValues(job.Unit).Inc()

	if o.publisher != nil {
		if err := o.publisher.PublishJobReady(ctx, job.ID, job.RunID); err != nil {
			o.logger.Warn("failed to publish job.ready",
				"job_id", job.ID,
				"run_id", state.RunID(),
				"error", err,
			)
			// Job создан в БД, воркер заберёт через polling.
		}
	}

	o.logger.Debug("job dispatched",
		"job_id", job.ID,
		"run_id", state.RunID(),
		"node_id", node.ID(),
		"unit", job.Unit,
	)
	return nil
}

// completeRun финализирует run.
func (o *Orchestrator) completeRun(ctx context.Context, state *RunState, success bool) error {
	run := state.Run

	if success {
		run.MarkSucceeded()
		o.logger.Info("run succeeded",
			"run_id", run.ID,
			"duration", run.Duration(),
		)
	} else {
		failed := state.FailedNodes()
		run.MarkFailed(fmt.Sprintf("nodes failed: %v", failed))
		o.logger.Warn("run failed",
			"run_id", run.ID,
			"failed_nodes", failed,
			"duration", run.Duration(),
		)
	}

	o.checkpoint(ctx, state)
	if err := o.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run status: %w", err)
	}

	telemetry.RunsFinished.WithLabelValues(string(run.Status)).Inc()
	o.removeActiveRun(run.ID)
	return nil
}

// failRun переводит run в FAILED до начала выполнения.
func (o *Orchestrator) failRun(ctx context.Context, run *domain.Run, errMsg string) error {
	run.MarkFailed(errMsg)

	if err := o.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to failed: %w", err)
	}
	telemetry.RunsFinished.WithLabelValues(string(run.Status)).Inc()

	o.logger.Warn("run failed early",
		"run_id", run.ID,
		"error", errMsg,
	)
	return fmt.Errorf("run failed: %s", errMsg)
}

// checkpoint сохраняет снимок плана в БД.
// Ошибка не фатальна: план можно перестроить из сценария.
func (o *Orchestrator) checkpoint(ctx context.Context, state *RunState) {
	if err := o.runRepo.SavePlan(ctx, state.RunID(), state.Snapshot()); err != nil {
		o.logger.Warn("failed to checkpoint plan",
			"run_id", state.RunID(),
			"error", err,
		)
	}
}

// restoreRunState восстанавливает RunState после рестарта:
// план из чекпойнта (или перестроением из сценария), память
// о jobs из БД.
func (o *Orchestrator) restoreRunState(ctx context.Context, runID uuid.UUID) (*RunState, error) {
	run, err := o.runRepo.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	if run.IsFinished() {
		return nil, nil
	}

	version, err := o.expRepo.GetVersion(ctx, run.ExperimentID, run.Version)
	if err != nil {
		return nil, fmt.Errorf("get experiment version: %w", err)
	}

	state := NewRunState(run, version)

	states, err := o.runRepo.LoadPlan(ctx, runID)
	switch {
	case err == nil:
		g, err := plan.Restore(states)
		if err != nil {
			return nil, fmt.Errorf("restore plan: %w", err)
		}
		state.Restore(g)
	case errors.Is(err, repo.ErrNotFound):
		// Чекпойнта нет: перестраиваем план из сценария.
		if err := state.Initialize(); err != nil {
			return nil, fmt.Errorf("rebuild plan: %w", err)
		}
	default:
		return nil, fmt.Errorf("load plan: %w", err)
	}

	jobs, err := o.jobRepo.ListByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	state.RestoreFromJobs(jobs, o.maxAttempts)

	if err := o.addActiveRun(state); err != nil {
		if errors.Is(err, ErrRunAlreadyActive) {
			// Кто-то уже восстановил, возвращаем его.
			return o.getActiveRun(runID), nil
		}
		return nil, err
	}

	o.logger.Info("run state restored",
		"run_id", runID,
		"stats", state.Stats(),
	)
	return state, nil
}
