package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/billfold/billfold/internal/invoices"
)

// OverdueScanJob flips Unpaid invoices past their due date to Overdue.
type OverdueScanJob struct {
	Invoices *invoices.Service
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewOverdueScanJob wires dependencies for the overdue scan handler.
func NewOverdueScanJob(invoicesSvc *invoices.Service, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{
		Invoices: invoicesSvc,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue scan tasks.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invoices == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = j.now()
	}

	logger := j.logger().With(slog.String("run_id", payload.RunID))
	logger.Info("starting overdue scan", slog.Time("as_of", asOf))

	start := j.now()
	changed, err := j.Invoices.MarkOverdue(ctx, asOf)
	if err != nil {
		logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed overdue scan",
		slog.Int64("invoices_marked", changed),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeOverdueScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeOverdueScan))
}

func (j *OverdueScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
