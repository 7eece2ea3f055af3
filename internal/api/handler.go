package api

import (
	"log/slog"

	"github.com/kadlec/mlproc/internal/mq"
	"github.com/kadlec/mlproc/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	expRepo      *repo.ExperimentRepo
	runRepo      *repo.RunRepo
	jobRepo      *repo.JobRepo
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	ExperimentRepo *repo.ExperimentRepo
	RunRepo        *repo.RunRepo
	JobRepo        *repo.JobRepo
	ScheduleRepo   *repo.ScheduleRepo
	Publisher      *mq.Publisher
	Logger         *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		expRepo:      cfg.ExperimentRepo,
		runRepo:      cfg.RunRepo,
		jobRepo:      cfg.JobRepo,
		scheduleRepo: cfg.ScheduleRepo,
		publisher:    cfg.Publisher,
		logger:       logger,
	}
}
