package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bismi-foods/backoffice/internal/app"
	"github.com/bismi-foods/backoffice/internal/customers"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/platform/cache"
	"github.com/bismi-foods/backoffice/internal/platform/db"
	"github.com/bismi-foods/backoffice/internal/shared"
	"github.com/bismi-foods/backoffice/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	balanceCache := customers.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)
	customersService := customers.NewService(customers.NewRepository(pool), nil, balanceCache)
	ordersService := orders.NewService(orders.NewRepository(pool), customersService, nil, customersService)
	customersService.BindOrderSource(ordersService)

	idempotency := shared.NewIdempotencyStore(pool)

	reconcileJob := jobs.NewDebtReconcileJob(ordersService, customersService, logger)
	refreshJob := jobs.NewBalanceRefreshJob(customersService, logger)
	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotency, logger)

	reconcileTask, err := jobs.NewDebtReconcileTask("nightly")
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}
	cleanupTask, err := jobs.NewIdempotencyCleanupTask(0)
	if err != nil {
		logger.Error("build cleanup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDebtReconcile, Handler: reconcileJob.Handle},
			{Type: jobs.TaskBalanceRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 1 * * *", Task: reconcileTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * 0", Task: cleanupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
