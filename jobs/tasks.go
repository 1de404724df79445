package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDebtReconcile recomputes order payment statuses from amounts.
	TaskDebtReconcile = "debt:reconcile"
	// TaskBalanceRefresh bumps the customer balance cache version.
	TaskBalanceRefresh = "balance:refresh"
	// TaskIdempotencyCleanup prunes old idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// DebtReconcilePayload configures a reconcile run.
type DebtReconcilePayload struct {
	Reason string `json:"reason"`
}

// NewDebtReconcileTask constructs an Asynq task.
func NewDebtReconcileTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(DebtReconcilePayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDebtReconcile, data), nil
}

// BalanceRefreshPayload configures a cache refresh.
type BalanceRefreshPayload struct {
	Reason string `json:"reason"`
}

// NewBalanceRefreshTask constructs an Asynq task.
func NewBalanceRefreshTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(BalanceRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceRefresh, data), nil
}

// IdempotencyCleanupPayload configures key retention.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// Retention converts the payload into a duration, defaulting to 7 days.
func (p IdempotencyCleanupPayload) Retention() time.Duration {
	if p.RetentionHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(p.RetentionHours) * time.Hour
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
