package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cardgen_backend/internal/pricing"
	quotarepo "cardgen_backend/internal/quota/repository"
	quotaservice "cardgen_backend/internal/quota/service"
	"cardgen_backend/internal/scheduler"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/db"
	"cardgen_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		panic("failed to parse redis url: " + err.Error())
	}
	rdb := redis.NewClient(opt)
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()

	catalog, err := pricing.Load(cfg.GetPricingPath())
	if err != nil {
		log.Error("failed to load pricing catalog", "error", err)
		panic("failed to load pricing catalog: " + err.Error())
	}

	quotaSvc := quotaservice.New(quotarepo.New(rdb), catalog, cfg, nil, log)

	sweepInterval := getDurationEnv("QUOTA_SWEEP_INTERVAL", time.Hour)
	sweep, err := scheduler.NewQuotaCycleSweep(cfg, quotaSvc, log, sweepInterval)
	if err != nil {
		log.Error("failed to initialize quota cycle sweep", "error", err)
		panic("failed to initialize quota cycle sweep: " + err.Error())
	}
	defer func() { _ = sweep.Close() }()
	go sweep.Run(ctx)

	cleanupInterval := getDurationEnv("HISTORY_CLEANUP_INTERVAL", time.Hour)
	retention := time.Duration(getPositiveIntEnv("HISTORY_RETENTION_DAYS", 90)) * 24 * time.Hour
	historyCleanup := scheduler.NewHistoryCleanup(pool, log, cleanupInterval, retention)
	go historyCleanup.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, quotaSvc, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
