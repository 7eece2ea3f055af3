package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kadlec/mlproc/internal/domain"
	"github.com/kadlec/mlproc/internal/mq"
	"github.com/kadlec/mlproc/internal/repo"
	"github.com/kadlec/mlproc/internal/telemetry"
	"github.com/kadlec/mlproc/internal/units"
)

// handleJobReady обрабатывает событие о новом job из очереди jobs.ready.
func (w *Worker) handleJobReady(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobReadyPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse job.ready payload", "error", err)
		return err
	}

	w.logger.Debug("received job.ready event",
		"job_id", payload.JobID,
		"run_id", payload.RunID,
	)

	if err := w.processJob(ctx, payload.JobID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrJobNotQueued) {
			w.logger.Debug("job not processed", "job_id", payload.JobID, "reason", err)
			return nil
		}
		w.logger.Error("failed to process job", "job_id", payload.JobID, "error", err)
		return err
	}

	return nil
}

// processJob загружает job из БД, выполняет модуль и обрабатывает результат.
func (w *Worker) processJob(ctx context.Context, jobID uuid.UUID) error {
	// 1. Загружаем job из БД
	job, err := w.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return fmt.Errorf("get job: %w", err)
	}

	// 2. Проверяем статус
	if job.Status != domain.JobStatusQueued {
		return ErrJobNotQueued
	}

	// 3. Помечаем как running
	job.MarkRunning()
	if err := w.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to running: %w", err)
	}

	w.logger.Info("job started",
		"job_id", job.ID,
		"run_id", job.RunID,
		"node_id", job.NodeID,
		"unit", job.Unit,
		"attempt", job.Attempt,
	)

	// 4. Выполняем модуль
	execErr := w.runUnit(ctx, job)

	// 5. Обрабатываем результат
	if execErr == nil {
		job.MarkSucceeded()
		if err := w.jobRepo.Update(ctx, job); err != nil {
			return fmt.Errorf("update job to succeeded: %w", err)
		}

		telemetry.JobsCompleted.WithLabelValues(job.Unit, string(job.Status)).Inc()
		telemetry.JobDuration.WithLabelValues(job.Unit).Observe(job.Duration().Seconds())

		w.logger.Info("job succeeded",
			"job_id", job.ID,
			"run_id", job.RunID,
			"node_id", job.NodeID,
			"attempt", job.Attempt,
			"duration", job.Duration(),
		)

		return w.publishCompletion(ctx, job, "")
	}

	job.MarkFailed(execErr.Error())
	if err := w.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to failed: %w", err)
	}

	telemetry.JobsCompleted.WithLabelValues(job.Unit, string(job.Status)).Inc()
	telemetry.JobDuration.WithLabelValues(job.Unit).Observe(job.Duration().Seconds())

	w.logger.Warn("job failed",
		"job_id", job.ID,
		"run_id", job.RunID,
		"node_id", job.NodeID,
		"attempt", job.Attempt,
		"error", execErr,
	)

	return w.publishCompletion(ctx, job, execErr.Error())
}

// runUnit конструирует модуль из реестра и выполняет его с таймаутом.
func (w *Worker) runUnit(ctx context.Context, job *domain.Job) error {
	unit, err := w.registry.New(job.Unit, units.Spec{
		ID:      job.NodeID,
		Params:  job.Params,
		Inputs:  job.Inputs,
		Outputs: job.Outputs,
		WorkDir: job.WorkDir,
	})
	if err != nil {
		return fmt.Errorf("construct unit %q: %w", job.Unit, err)
	}

	execCtx, cancel := context.WithTimeout(ctx, w.execTimeout)
	defer cancel()

	if err := unit.Perform(execCtx); err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrExecutionTimeout, w.execTimeout)
		}
		return err
	}
	return nil
}

// publishCompletion публикует событие job.completed.
func (w *Worker) publishCompletion(ctx context.Context, job *domain.Job, errMsg string) error {
	if w.publisher == nil {
		w.logger.Warn("publisher not available, skipping job.completed publish",
			"job_id", job.ID,
		)
		return nil
	}

	payload := mq.JobCompletedPayload{
		JobID:   job.ID,
		RunID:   job.RunID,
		NodeID:  job.NodeID,
		Status:  string(job.Status),
		Error:   errMsg,
		Attempt: job.Attempt,
	}

	if err := w.publisher.PublishJobCompleted(ctx, payload); err != nil {
		w.logger.Warn("failed to publish job.completed",
			"job_id", job.ID,
			"error", err,
		)
		// Не возвращаем ошибку — job обновлён в БД, оркестратор подхватит через polling
	}

	return nil
}
