package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bismi-foods/backoffice/internal/app"
	"github.com/bismi-foods/backoffice/internal/customers"
	"github.com/bismi-foods/backoffice/internal/inventory"
	"github.com/bismi-foods/backoffice/internal/invoices"
	"github.com/bismi-foods/backoffice/internal/orders"
	"github.com/bismi-foods/backoffice/internal/payments"
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

	idempotency := shared.NewIdempotencyStore(pool)
	balanceCache := customers.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)

	inventoryService := inventory.NewService(inventory.NewRepository(pool))

	// Customers and orders reference each other; the order source side is
	// bound after both services exist.
	customersService := customers.NewService(customers.NewRepository(pool), nil, balanceCache)
	ordersService := orders.NewService(orders.NewRepository(pool), customersService, inventoryService, customersService)
	customersService.BindOrderSource(ordersService)

	paymentsService := payments.NewService(logger, payments.NewRepository(pool), ordersService, idempotency, customersService)
	invoicesService := invoices.NewService(invoices.NewRepository(pool), ordersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CustomersHandler: customers.NewHandler(logger, customersService),
		OrdersHandler:    orders.NewHandler(logger, ordersService),
		PaymentsHandler:  payments.NewHandler(logger, paymentsService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		InvoicesHandler:  invoices.NewHandler(logger, invoicesService),
		JobsHandler:      jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
