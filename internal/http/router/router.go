// Package router assembles the HTTP engine from middleware, health endpoints
// and module route registrations.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "cardgen_backend/internal/http"
	"cardgen_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const apiVersion = "1.0.0"

// readinessTimeout bounds the dependency pings behind /health/ready.
const readinessTimeout = 5 * time.Second

// New builds the HTTP engine: global middleware, health endpoints and module
// routes under /api/v1. Health endpoints sit outside the rate-limited group
// so probes always get through.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	registerHealth(engine, app)

	v1 := engine.Group("/api/v1")
	if app.Redis != nil && app.Config.IsRateLimitEnabled() {
		limiter := httpkit.NewRedisRateLimiter(app.Redis, app.Config.GetRateLimitPerMinute(), app.Config.GetRateLimitPerHour(), app.Logger)
		v1.Use(limiter.RateLimit())
	}

	auth := httpkit.AuthRequired(app.Config)
	admin := v1.Group("/admin")
	admin.Use(httpkit.NewAuthRateLimiter(app.Logger).RateLimit())
	admin.Use(auth)
	admin.Use(httpkit.RequireRole("admin"))

	rctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Admin:          admin,
		Config:         app.Config,
		AuthMiddleware: auth,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rctx)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Remaining-Requests"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cfg
}

func registerHealth(engine *gin.Engine, app *apphttp.App) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   apiVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	engine.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		results := make([]error, len(app.Readiness))
		g, gctx := errgroup.WithContext(ctx)
		for i, chk := range app.Readiness {
			i, chk := i, chk
			g.Go(func() error {
				// Record the failure instead of returning it so every
				// dependency is pinged.
				results[i] = chk.Check(gctx)
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		deps := gin.H{}
		for i, chk := range app.Readiness {
			if results[i] != nil {
				status = http.StatusServiceUnavailable
				deps[chk.Name] = results[i].Error()
				continue
			}
			deps[chk.Name] = "ok"
		}

		word := "ready"
		if status != http.StatusOK {
			word = "degraded"
		}
		c.JSON(status, gin.H{"status": word, "dependencies": deps})
	})
}
