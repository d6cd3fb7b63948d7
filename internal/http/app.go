// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"cardgen_backend/internal/events"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.RateLimitConfig
}

// ReadinessCheck names one dependency ping used by GET /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP, JWT and rate limit settings).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Redis backs the shared fixed-window rate limiter; nil disables it.
	Redis *redis.Client
	// Readiness lists the dependency pings for the readiness endpoint.
	Readiness []ReadinessCheck
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
