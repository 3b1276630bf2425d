package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultDispatchRetrySchedule runs at second zero of every minute.
const DefaultDispatchRetrySchedule = "0 * * * * *"

// PendingDispatchRetrier re-dispatches paid orders whose delivery jobs are incomplete.
type PendingDispatchRetrier interface {
	Handle(ctx context.Context, cmd commands.RetryPendingDispatchesCommand) (commands.RetrySummary, error)
}

type DispatchRetryConfig struct {
	Schedule  string
	BatchSize int
	// MinAge leaves orders alone while the payment webhook may still be dispatching them.
	MinAge time.Duration
	// Timeout bounds a single run.
	Timeout time.Duration
}

func DefaultDispatchRetryConfig() DispatchRetryConfig {
	return DispatchRetryConfig{
		Schedule:  DefaultDispatchRetrySchedule,
		BatchSize: 25,
		MinAge:    5 * time.Minute,
		Timeout:   50 * time.Second,
	}
}

// DispatchRetryJob runs the pending dispatch retry on a cron schedule. A run
// that is still going when the next one is due makes the next one skip.
type DispatchRetryJob struct {
	handler PendingDispatchRetrier
	config  DispatchRetryConfig
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewDispatchRetryJob(handler PendingDispatchRetrier, config DispatchRetryConfig, logger *slog.Logger) *DispatchRetryJob {
	defaults := DefaultDispatchRetryConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	logger = logger.With("component", "dispatch_retry_job")
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))

	return &DispatchRetryJob{
		handler: handler,
		config:  config,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: logger,
	}
}

// Start schedules the job. An invalid schedule is reported here.
func (j *DispatchRetryJob) Start() error {
	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.config.Timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch retry job started", "schedule", j.config.Schedule)
	return nil
}

// RunOnce performs a single retry pass. The handler logs the pass summary.
func (j *DispatchRetryJob) RunOnce(ctx context.Context) (commands.RetrySummary, error) {
	cmd, err := commands.NewRetryPendingDispatchesCommand(j.config.BatchSize, j.config.MinAge)
	if err != nil {
		return commands.RetrySummary{}, err
	}

	summary, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			j.logger.ErrorContext(ctx, "Dispatch retry job failed", "error", err)
		}
		return summary, err
	}
	return summary, nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *DispatchRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatch retry job stopped")
}
