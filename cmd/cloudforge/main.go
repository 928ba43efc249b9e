package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cloudforge-erp/cloudforge-erp/internal/app"
	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/catalog"
	"github.com/cloudforge-erp/cloudforge-erp/internal/delivery"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/cache"
	"github.com/cloudforge-erp/cloudforge-erp/internal/platform/db"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/orders"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
	"github.com/cloudforge-erp/cloudforge-erp/internal/shared"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	idempotency := shared.NewIdempotencyStore(pool)

	catalogService := catalog.NewService(catalog.NewRepository(pool), catalog.NewCache(redisClient, cfg.CatalogCacheTTL))
	inventoryService := inventory.NewService(inventory.NewRepository(pool), idempotency)
	quoteService := quotes.NewService(quotes.NewRepository(pool), catalogService)
	orderService := orders.NewService(orders.NewRepository(pool), quoteService, inventoryService)
	deliveryService := delivery.NewService(delivery.NewRepository(pool))
	arService := ar.NewService(ar.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, catalogService),
		InventoryHandler: inventory.NewHandler(logger, inventoryService),
		QuoteHandler:     quotes.NewHandler(logger, quoteService),
		OrderHandler:     orders.NewHandler(logger, orderService),
		DeliveryHandler:  delivery.NewHandler(logger, deliveryService),
		ARHandler:        ar.NewHandler(logger, arService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
