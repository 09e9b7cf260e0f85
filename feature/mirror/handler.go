package mirror

import (
	"var-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the package mirror.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mirror routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mirror")
	group.Get("/", h.HandleList)
	group.Post("/run", h.HandleRun)
	group.Post("/prune", h.HandlePrune)
}

// HandleList lists the mirrored archives.
// @Summary List Mirrored Archives
// @Tags mirror
// @Produce json
// @Success 200 {object} map[string]interface{} "Object names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.ListMirrored(c.Context())
	if err != nil {
		l.Error("Mirror listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"count":   len(names),
		"objects": names,
	})
}

// HandleRun triggers a mirror pass over the archived variants.
// @Summary Run Mirror Pass
// @Description Upload every published archived variant not already in the bucket. Blocks until done.
// @Tags mirror
// @Produce json
// @Success 200 {object} RunReport "Mirror report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Mirror pass requested")

	report, err := h.service.MirrorArchived(c.Context())
	if err != nil {
		l.Error("Mirror pass failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(report)
}

// HandlePrune removes mirrored objects that are no longer archived.
// @Summary Prune Mirror
// @Tags mirror
// @Produce json
// @Success 200 {object} map[string]interface{} "Removed object names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mirror/prune [post]
func (h *Handler) HandlePrune(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	removed, err := h.service.Prune(c.Context())
	if err != nil {
		l.Error("Mirror prune failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"count":   len(removed),
		"removed": removed,
	})
}
