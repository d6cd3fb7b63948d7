// Package generation provides the product content generation bounded context.
package generation

import (
	"context"

	"cardgen_backend/internal/events"
	"cardgen_backend/internal/generation/handler"
	"cardgen_backend/internal/generation/normalize"
	"cardgen_backend/internal/generation/repository"
	"cardgen_backend/internal/generation/service"
	apphttp "cardgen_backend/internal/http"
	"cardgen_backend/internal/imagery"
	"cardgen_backend/platform/ai/openai"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"
	"cardgen_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the generation bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	history *service.History
	repo    repository.Repository
	log     *logger.Logger
}

// NewModule creates and initializes the generation module. upstream, quota
// and archiver may be nil: without an upstream every request is served the
// fallback record, without the others the matching feature is disabled.
func NewModule(pool *pgxpool.Pool, upstream *openai.Client, quota handler.QuotaGate, archiver *imagery.Archiver, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) *Module {
	repo := repository.New(pool)

	norm := normalize.New(normalize.FromConfig(cfg))

	var caller service.Upstream
	if upstream != nil {
		caller = service.NewCaller(upstream, cfg, log)
	}
	svc := service.New(caller, norm, cfg, log)
	history := service.NewHistory(repo, log)

	var archive handler.PhotoArchiver
	if archiver != nil {
		archive = archiver
	}

	h := handler.New(svc, history, quota, imagery.NewValidator(cfg), archive, eventBus, val, cfg.GetMaxTextLength(), log)

	return &Module{
		handler: h,
		service: svc,
		history: history,
		repo:    repo,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "generation" }

// Service returns the generation facade for external use.
func (m *Module) Service() *service.Service { return m.service }

// History returns the history service for background cleanup jobs.
func (m *Module) History() *service.History { return m.history }

// RegisterRoutes mounts generation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/generate", m.handler.Generate)
	ctx.Admin.GET("/generations", m.handler.ListGenerations)
	ctx.Admin.GET("/generations/:id/photo", m.handler.GetPhoto)
}

// RegisterHandlers subscribes the module to its own completion events so
// history rows are written off the request path.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.GenerationCompleted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.GenerationCompleted:
		return m.recordCompletion(ctx, e)
	}
	return nil
}

func (m *Module) recordCompletion(ctx context.Context, evt events.GenerationCompleted) error {
	p := repository.InsertParams{
		RequestID:    evt.RequestID,
		UserID:       evt.UserID,
		Source:       evt.Source,
		Title:        evt.Title,
		UsedFallback: evt.UsedFallback,
		Attempts:     evt.Attempts,
		DurationMS:   evt.DurationMS,
	}
	if evt.FallbackReason != "" {
		p.FallbackReason = &evt.FallbackReason
	}
	if evt.ObjectKey != "" {
		p.ObjectKey = &evt.ObjectKey
	}
	return m.history.Record(ctx, p)
}
