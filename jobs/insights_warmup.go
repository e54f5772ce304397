package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/billfold/billfold/internal/insights"
)

// InsightsWarmupJob rebuilds cached dashboard summaries for every user
// that owns invoices.
type InsightsWarmupJob struct {
	Insights *insights.Service
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewInsightsWarmupJob wires dependencies for the warmup handler.
func NewInsightsWarmupJob(insightsSvc *insights.Service, logger *slog.Logger) *InsightsWarmupJob {
	return &InsightsWarmupJob{
		Insights: insightsSvc,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks.
func (j *InsightsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Insights == nil {
		return errors.New("insights warmup: handler not configured")
	}
	var payload InsightsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("run_id", payload.RunID))
	logger.Info("starting insights warmup")

	start := j.now()
	warmed, err := j.Insights.WarmAll(ctx)
	if err != nil {
		logger.Error("insights warmup failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed insights warmup",
		slog.Int("users_warmed", warmed),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *InsightsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeInsightsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTypeInsightsWarmup))
}

func (j *InsightsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
