package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"var-manager/core/cache"
	"var-manager/core/catalog"
	"var-manager/core/config"
	"var-manager/core/database"
	"var-manager/core/loader"
	"var-manager/core/logger"
	"var-manager/core/middleware/auth"
	"var-manager/core/middleware/rayid"
	"var-manager/core/storage"
	"var-manager/feature/integrity"
	"var-manager/feature/mirror"
	"var-manager/feature/packages"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the package catalog server",
	Long:  `Starts the HTTP server, runs an initial catalog resync and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open the persistent metadata cache (optional). Without it
		// every scan re-parses every archive; the catalog still works.
		var metaCache *cache.Store
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Metadata cache unavailable, scans will re-parse everything", zap.Error(err))
		} else if store, err := cache.New(db, logg); err != nil {
			logg.Warn("Metadata cache migration failed", zap.Error(err))
		} else {
			metaCache = store
			logg.Info("Metadata cache ready", zap.String("path", cfg.Database.Path))
		}

		// 4. Build the catalog
		var cacheIface catalog.MetadataCache
		if metaCache != nil {
			cacheIface = metaCache
		}
		parser := catalog.NewParser(cacheIface, nil, logg)
		cat := catalog.New(parser, cacheIface, logg, cfg.Scan.Workers)

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		})

		// 6. Initialize Storage (optional, only the mirror needs it)
		var store storage.Client
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Storage client unavailable, mirror disabled", zap.Error(err))
		} else {
			store = client
		}

		// 7. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		// Register Features
		mgr.Register(packages.NewFeature(cat, cfg.Scan, logg))
		mgr.Register(integrity.NewFeature(cat.Store(), metaCache, logg))
		mgr.Register(mirror.NewFeature(store, cfg.Storage.Bucket, cat.Store(), logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Initial resync in the background so the server accepts
		// requests immediately; the catalog fills in as it completes.
		go func() {
			loaded, other := catalog.DiscoverPaths(cfg.Scan.LoadedDir, cfg.Scan.AvailableDirList())
			stats, err := cat.Resync(context.Background(), loaded, other)
			if err != nil {
				logg.Error("Initial resync failed", zap.Error(err))
				return
			}
			logg.Info("Initial resync complete",
				zap.Int("packages", stats.Packages),
				zap.Int("variants", stats.Variants),
				zap.Duration("duration", stats.Duration))
		}()

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
