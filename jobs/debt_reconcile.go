package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// StatusReconciler fixes order payment statuses that have drifted from
// their amounts. The orders service implements it.
type StatusReconciler interface {
	ReconcileStatuses(ctx context.Context) (int, error)
}

// BalanceRefresher invalidates cached customer balances. The customers
// service implements it.
type BalanceRefresher interface {
	InvalidateBalances(ctx context.Context)
}

// DebtReconcileJob periodically recomputes payment statuses so the
// ledger's paid filter never hides live debt behind a stale status.
type DebtReconcileJob struct {
	reconciler StatusReconciler
	balances   BalanceRefresher
	logger     *slog.Logger
}

// NewDebtReconcileJob constructs the job.
func NewDebtReconcileJob(reconciler StatusReconciler, balances BalanceRefresher, logger *slog.Logger) *DebtReconcileJob {
	return &DebtReconcileJob{reconciler: reconciler, balances: balances, logger: logger}
}

// Handle processes TaskDebtReconcile tasks.
func (j *DebtReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload DebtReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	fixed, err := j.reconciler.ReconcileStatuses(ctx)
	if err != nil {
		j.logger.Error("debt reconcile", slog.Any("error", err))
		return err
	}
	if fixed > 0 && j.balances != nil {
		j.balances.InvalidateBalances(ctx)
	}
	j.logger.Info("debt reconcile complete",
		slog.Int("orders_fixed", fixed),
		slog.String("reason", payload.Reason))
	return nil
}
