package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardgen_backend/internal/events"
	"cardgen_backend/internal/generation"
	apphttp "cardgen_backend/internal/http"
	"cardgen_backend/internal/http/router"
	"cardgen_backend/internal/imagery"
	"cardgen_backend/internal/pricing"
	"cardgen_backend/internal/quota"
	"cardgen_backend/internal/scheduler"
	"cardgen_backend/migrations"
	"cardgen_backend/platform/ai/openai"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/db"
	"cardgen_backend/platform/logger"
	"cardgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	rdb, err := newRedisClient(cfg)
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		panic("failed to parse redis url: " + err.Error())
	}
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer rdb.Close()
	log.Info("redis connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	cycleScheduler, closeScheduler := initCycleScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Photo archive for uploaded product images (MinIO)
	var archiver *imagery.Archiver
	if cfg.IsMinIOEnabled() {
		archiver, err = imagery.NewArchiver(cfg)
		if err != nil {
			log.Error("failed to initialize photo archive", "error", err)
			panic("failed to initialize photo archive: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure uploads bucket", 5, 2*time.Second, func() error {
			return archiver.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure uploads bucket exists", "error", err, "bucket", cfg.GetMinioBucketUploads())
			panic("failed to ensure uploads bucket exists: " + err.Error())
		}
		log.Info("photo archive initialized", "bucket", cfg.GetMinioBucketUploads())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; photo archiving disabled")
	}

	// Upstream completion client; without it every request is served by the
	// deterministic fallback.
	var upstream *openai.Client
	if cfg.IsOpenAIEnabled() {
		upstream, err = openai.NewClient(openai.Config{
			APIKey:      cfg.GetOpenAIAPIKey(),
			BaseURL:     cfg.GetOpenAIBaseURL(),
			Model:       cfg.GetOpenAIModel(),
			MaxTokens:   cfg.GetOpenAIMaxTokens(),
			Temperature: cfg.GetOpenAITemperature(),
			Timeout:     cfg.GetOpenAITimeout(),
			ProxyURL:    cfg.GetOpenAIProxyURL(),
		})
		if err != nil {
			log.Error("failed to initialize completion client", "error", err)
			panic("failed to initialize completion client: " + err.Error())
		}
		log.Info("completion client initialized", "model", cfg.GetOpenAIModel())
	} else {
		log.Warn("OPENAI_API_KEY not configured; serving fallback content only")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pricingModule, err := pricing.NewModule(cfg, log)
	if err != nil {
		log.Error("failed to load pricing catalog", "error", err)
		panic("failed to load pricing catalog: " + err.Error())
	}

	quotaModule := quota.NewModule(rdb, pricingModule.Catalog(), eventBus, val, cfg, log)
	quotaModule.SetCycleScheduler(cycleScheduler)

	generationModule := generation.NewModule(pool, upstream, quotaModule.Service(), archiver, eventBus, val, cfg, log)
	generationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	readiness := []apphttp.ReadinessCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pool.Ping(ctx) }},
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}
	if archiver != nil {
		readiness = append(readiness, apphttp.ReadinessCheck{Name: "minio", Check: archiver.Ready})
	}

	app := &apphttp.App{
		Config:    cfg,
		Logger:    log,
		Redis:     rdb,
		Readiness: readiness,
		EventBus:  eventBus,
		Modules: []apphttp.Module{
			generationModule,
			quotaModule,
			pricingModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func newRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func initCycleScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.CycleScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; scheduled cycle resets disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize cycle scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
