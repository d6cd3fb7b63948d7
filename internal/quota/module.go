// Package quota provides the subscription quota bounded context.
package quota

import (
	"github.com/redis/go-redis/v9"

	"cardgen_backend/internal/events"
	apphttp "cardgen_backend/internal/http"
	"cardgen_backend/internal/quota/handler"
	"cardgen_backend/internal/quota/repository"
	"cardgen_backend/internal/quota/service"
	"cardgen_backend/internal/scheduler"
	"cardgen_backend/platform/logger"
	"cardgen_backend/platform/validator"
)

// Module is the quota bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

// NewModule creates and initializes the quota module. plans resolves plan
// codes to monthly quotas; eventBus may be nil.
func NewModule(client *redis.Client, plans service.PlanCatalog, eventBus events.Bus, val *validator.Validator, cfg service.Config, log *logger.Logger) *Module {
	repo := repository.New(client)
	svc := service.New(repo, plans, cfg, eventBus, log)
	h := handler.New(svc, val, log)

	return &Module{
		handler: h,
		service: svc,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "quota" }

// Service returns the quota service; the generation module charges requests
// through it.
func (m *Module) Service() *service.Service { return m.service }

// SetCycleScheduler wires the background task client for month-boundary
// plan refills.
func (m *Module) SetCycleScheduler(sched scheduler.CycleScheduler) {
	m.service.SetCycleScheduler(sched)
}

// RegisterRoutes mounts quota routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/quota/:userID", m.handler.GetStatus)
	ctx.Admin.POST("/quota/:userID/grant", m.handler.Grant)
}
