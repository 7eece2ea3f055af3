package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики конвейера. Регистрируются в DefaultRegisterer, экспорт
// идёт через promhttp в main каждого сервиса.
var (
	// RunsStarted — количество запущенных runs.
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mlproc",
		Name:      "runs_started_total",
		Help:      "Number of runs taken into execution.",
	})

	// RunsFinished — завершённые runs по итоговому статусу.
	RunsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlproc",
		Name:      "runs_finished_total",
		Help:      "Number of finished runs by terminal status.",
	}, []string{"status"})

	// JobsDispatched — jobs, отправленные воркерам, по имени модуля.
	JobsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlproc",
		Name:      "jobs_dispatched_total",
		Help:      "Number of jobs dispatched to workers by unit.",
	}, []string{"unit"})

	// JobsCompleted — завершённые jobs по модулю и статусу.
	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mlproc",
		Name:      "jobs_completed_total",
		Help:      "Number of completed jobs by unit and status.",
	}, []string{"unit", "status"})

	// JobDuration — длительность выполнения модуля.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mlproc",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock duration of unit execution.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"unit"})

	// PlanNodes — размер построенного плана (после раскрытия шаблонов).
	PlanNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mlproc",
		Name:      "plan_nodes",
		Help:      "Number of nodes in a built run plan.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)
