package mirror

import (
	"var-manager/core/catalog"
	"var-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the mirror feature. The feature stays disabled
// when no storage client is configured.
func NewFeature(client storage.Client, bucket string, store *catalog.Store, logger *zap.Logger) *Feature {
	f := &Feature{enabled: client != nil && bucket != ""}
	if f.enabled {
		f.service = NewService(client, bucket, store, logger)
		f.handler = NewHandler(f.service)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "mirror"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
