package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/api"
	"github.com/ayo6706/lottery-wallet/internal/api/handler"
	"github.com/ayo6706/lottery-wallet/internal/api/middleware"
	"github.com/ayo6706/lottery-wallet/internal/config"
	"github.com/ayo6706/lottery-wallet/internal/feed"
	"github.com/ayo6706/lottery-wallet/internal/idempotency"
	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/ayo6706/lottery-wallet/internal/worker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Run bootstraps the HTTP server, the draw feed and the background workers,
// blocking until a shutdown signal arrives or one of them fails.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	health := map[string]handler.Pinger{"database": store}
	var rdb redis.Cmdable
	if cfg.RedisURL != "" {
		client, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		rdb = client
		health["redis"] = redisPinger{rdb: client}
	} else {
		logger.Warn("REDIS_URL not set; idempotency cache, multiplier cache and activity mirror disabled")
	}

	hub := feed.NewHub()
	services, index := newServices(cfg, store, rdb, hub)

	deps := api.Deps{
		Config:      cfg,
		Logger:      logger,
		Services:    services,
		Idempotency: idempotency.NewStore(rdb, store, cfg.IdempotencyTTL),
		Feed:        hub.HandleWS,
		Health:      health,
	}
	if index != nil {
		deps.Activity = index
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(deps).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	settler := worker.NewSettlementWorker(services.Settlement).WithPollInterval(cfg.SettlementPollInterval)
	reconciler := worker.NewReconciliationWorker(service.NewReconciliationService(store)).WithInterval(cfg.ReconciliationInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		settler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		reconciler.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort), zap.Bool("memory_store", cfg.UsesMemoryStore()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", zap.Error(err))
		}
		return nil
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
