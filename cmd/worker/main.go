package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/cloudforge-erp/cloudforge-erp/internal/app"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
	"github.com/cloudforge-erp/cloudforge-erp/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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

	overdue := jobs.NewOverdueScanner(pool, logger)
	integrity := jobs.NewIntegrityChecker(pool, logger)

	overdueTask, err := jobs.NewInvoiceOverdueTask(jobs.InvoiceOverduePayload{AsOf: time.Time{}})
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeInvoiceOverdue, Handler: overdue.Handle},
			{Type: jobs.TaskTypeStockIntegrity, Handler: integrity.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 6 * * *", Task: overdueTask},
			{Spec: "30 2 * * *", Task: jobs.NewStockIntegrityTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
