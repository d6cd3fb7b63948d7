package pricing

import (
	apphttp "cardgen_backend/internal/http"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"
)

// Module wires the pricing catalog HTTP routes.
type Module struct {
	catalog *Catalog
	handler *Handler
}

func NewModule(cfg config.PricingConfig, log *logger.Logger) (*Module, error) {
	catalog, err := Load(cfg.GetPricingPath())
	if err != nil {
		return nil, err
	}
	log.Info("pricing catalog loaded", "path", cfg.GetPricingPath(), "plans", len(catalog.Plans))

	return &Module{
		catalog: catalog,
		handler: NewHandler(catalog),
	}, nil
}

func (m *Module) Name() string {
	return "pricing"
}

// Catalog returns the loaded plan table; the quota module resolves plan
// codes through it.
func (m *Module) Catalog() *Catalog {
	return m.catalog
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/pricing", m.handler.GetCatalog)
}

var _ apphttp.Module = (*Module)(nil)
