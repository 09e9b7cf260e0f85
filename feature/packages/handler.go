package packages

import (
	"errors"

	"var-manager/core/catalog"
	"var-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the package catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the package routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/packages")
	group.Get("/", h.HandleList)
	group.Get("/stats", h.HandleStats)
	group.Post("/resync", h.HandleResync)
	group.Post("/refresh", h.HandleRefresh)
	group.Get("/:key", h.HandleGet)
	group.Delete("/:key", h.HandleInvalidate)
}

// HandleList returns the published packages matching the query filters.
// @Summary List Packages
// @Description List published package records, optionally filtered by creator, category, status or free-text query.
// @Tags packages
// @Produce json
// @Param creator query string false "Creator name"
// @Param category query string false "Category name"
// @Param status query string false "Status (Loaded, Available, Archived, Duplicate)"
// @Param q query string false "Free-text query over key, description and tags"
// @Param duplicates query bool false "Only duplicate variants"
// @Param old query bool false "Only superseded versions"
// @Success 200 {object} map[string]interface{} "Package list"
// @Router /packages [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	entries := h.service.List(ListFilter{
		Creator:        c.Query("creator"),
		Category:       c.Query("category"),
		Status:         c.Query("status"),
		Query:          c.Query("q"),
		DuplicatesOnly: c.QueryBool("duplicates"),
		OldOnly:        c.QueryBool("old"),
	})
	return c.JSON(fiber.Map{
		"count":    len(entries),
		"packages": entries,
	})
}

// HandleGet returns the record published under a single key.
// @Summary Get Package
// @Description Get one published package record by its catalog key (canonical or role-suffixed).
// @Tags packages
// @Produce json
// @Param key path string true "Catalog key (e.g. 'Acme.Outfit.3')"
// @Success 200 {object} catalog.Metadata "Package record"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /packages/{key} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	key := c.Params("key")
	meta, ok := h.service.Get(key)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "package not found",
		})
	}
	return c.JSON(meta)
}

// HandleStats returns the statistics of the most recent pass.
// @Summary Catalog Stats
// @Tags packages
// @Produce json
// @Success 200 {object} catalog.Stats "Last pass statistics"
// @Router /packages/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.LastStats())
}

// HandleResync triggers a full catalog rebuild.
// @Summary Resync Catalog
// @Description Discover every package archive in the configured folders and rebuild the catalog. Blocks until done.
// @Tags packages
// @Produce json
// @Success 200 {object} catalog.Stats "Resync statistics"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /packages/resync [post]
func (h *Handler) HandleResync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Full resync requested")

	stats, err := h.service.Resync(c.Context())
	if err != nil {
		l.Error("Resync failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(stats)
}

type refreshRequest struct {
	PackageBase string `json:"packageBase"`
	Path        string `json:"path"`
}

// HandleRefresh rebuilds one package after an external file change.
// @Summary Refresh Package
// @Description Rebuild a single package snapshot after one of its files changed on disk.
// @Tags packages
// @Accept json
// @Produce json
// @Param request body refreshRequest true "Package base and changed path"
// @Success 200 {object} catalog.Stats "Refresh statistics"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /packages/refresh [post]
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	stats, err := h.service.Refresh(c.Context(), req.PackageBase, req.Path)
	if err != nil {
		if errors.Is(err, catalog.ErrMissingArgument) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Refresh failed",
			zap.String("package", req.PackageBase), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(stats)
}

// HandleInvalidate drops a package from the catalog and cache.
// @Summary Invalidate Package
// @Description Remove a package's published keys, snapshot and cache rows ahead of an external delete or move.
// @Tags packages
// @Produce json
// @Param key path string true "Package base (e.g. 'Acme.Outfit.3')"
// @Success 204 "Invalidated"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /packages/{key} [delete]
func (h *Handler) HandleInvalidate(c *fiber.Ctx) error {
	if err := h.service.Invalidate(c.Params("key")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
