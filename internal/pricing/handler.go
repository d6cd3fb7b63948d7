package pricing

import (
	"github.com/gin-gonic/gin"

	"cardgen_backend/platform/httpkit"
)

// Handler exposes the plan catalog endpoint.
type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// GetCatalog handles GET /api/v1/pricing
func (h *Handler) GetCatalog(c *gin.Context) {
	httpkit.OK(c, h.catalog)
}
