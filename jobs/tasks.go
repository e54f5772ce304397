// Package jobs contains the Asynq task definitions and the worker that
// runs them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeOverdueScan promotes Unpaid invoices past due to Overdue.
	TaskTypeOverdueScan = "invoice:overdue_scan"
	// TaskTypeInsightsWarmup pre-populates dashboard summary caches.
	TaskTypeInsightsWarmup = "insights:warmup"
)

// OverdueScanPayload parameterises an overdue scan run. AsOf defaults to
// the handler's clock when zero.
type OverdueScanPayload struct {
	RunID string    `json:"run_id"`
	AsOf  time.Time `json:"as_of,omitempty"`
}

// NewOverdueScanTask constructs an overdue scan task with a fresh run ID.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOverdueScan, data), nil
}

// InsightsWarmupPayload parameterises a summary warmup run.
type InsightsWarmupPayload struct {
	RunID string `json:"run_id"`
}

// NewInsightsWarmupTask constructs a warmup task with a fresh run ID.
func NewInsightsWarmupTask(payload InsightsWarmupPayload) (*asynq.Task, error) {
	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInsightsWarmup, data), nil
}
