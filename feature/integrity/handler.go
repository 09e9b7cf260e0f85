package integrity

import (
	"var-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleReport)
	group.Get("/cache", h.HandleCacheStats)
}

// HandleReport builds and returns the full catalog health report.
// @Summary Catalog Health Report
// @Description Walk every published record and report corruption, damage, unresolved dependencies and duplicates.
// @Tags integrity
// @Produce json
// @Success 200 {object} Report "Health report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity [get]
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.BuildReport(c.Context())
	if err != nil {
		l.Error("Integrity report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleCacheStats returns persistent-cache counters.
// @Summary Cache Stats
// @Tags integrity
// @Produce json
// @Success 200 {object} CacheStats "Cache statistics"
// @Router /integrity/cache [get]
func (h *Handler) HandleCacheStats(c *fiber.Ctx) error {
	return c.JSON(h.service.CacheStats())
}
