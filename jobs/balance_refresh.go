package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bismi-foods/backoffice/internal/shared"
)

// BalanceRefreshJob bumps the balance cache version so every customer's
// next balance read recomputes from the current orders and adjustments.
type BalanceRefreshJob struct {
	balances BalanceRefresher
	logger   *slog.Logger
}

// NewBalanceRefreshJob constructs the job.
func NewBalanceRefreshJob(balances BalanceRefresher, logger *slog.Logger) *BalanceRefreshJob {
	return &BalanceRefreshJob{balances: balances, logger: logger}
}

// Handle processes TaskBalanceRefresh tasks.
func (j *BalanceRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload BalanceRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	j.balances.InvalidateBalances(ctx)
	j.logger.Info("balance cache refreshed", slog.String("reason", payload.Reason))
	return nil
}

// IdempotencyCleanupJob prunes old idempotency keys. Keys only need to
// outlive the retry window of a payment batch.
type IdempotencyCleanupJob struct {
	store  *shared.IdempotencyStore
	logger *slog.Logger
}

// NewIdempotencyCleanupJob constructs the job.
func NewIdempotencyCleanupJob(store *shared.IdempotencyStore, logger *slog.Logger) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{store: store, logger: logger}
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	started := time.Now()
	if err := j.store.Cleanup(ctx, payload.Retention()); err != nil {
		j.logger.Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	j.logger.Info("idempotency cleanup complete", slog.Duration("took", time.Since(started)))
	return nil
}
