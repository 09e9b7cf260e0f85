package cmd

import (
	"context"
	"log"

	"var-manager/core/cache"
	"var-manager/core/catalog"
	"var-manager/core/config"
	"var-manager/core/database"
	"var-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resyncLoadedDir     string
	resyncAvailableDirs string
)

// resyncCmd represents the resync command
var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Rebuild the package catalog once and exit",
	Long: `Discovers every package archive in the configured folders, rebuilds
the catalog, warms the persistent metadata cache and prints the pass statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		// CLI runs get console output regardless of the server setting.
		cfg.Log.Format = "console"

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		if resyncLoadedDir != "" {
			cfg.Scan.LoadedDir = resyncLoadedDir
		}
		if resyncAvailableDirs != "" {
			cfg.Scan.AvailableDirs = resyncAvailableDirs
		}

		var cacheIface catalog.MetadataCache
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Metadata cache unavailable", zap.Error(err))
		} else if store, err := cache.New(db, logg); err != nil {
			logg.Warn("Metadata cache migration failed", zap.Error(err))
		} else {
			cacheIface = store
		}

		parser := catalog.NewParser(cacheIface, nil, logg)
		cat := catalog.New(parser, cacheIface, logg, cfg.Scan.Workers)

		loaded, other := catalog.DiscoverPaths(cfg.Scan.LoadedDir, cfg.Scan.AvailableDirList())
		stats, err := cat.Resync(context.Background(), loaded, other)
		if err != nil {
			logg.Fatal("Resync failed", zap.Error(err))
		}

		logg.Info("Resync complete",
			zap.Int("packages", stats.Packages),
			zap.Int("variants", stats.Variants),
			zap.Int64("parsed", stats.Parsed),
			zap.Int64("cache_hits", stats.CacheHits),
			zap.Int64("skipped", stats.Skipped),
			zap.Duration("duration", stats.Duration))
	},
}

func init() {
	resyncCmd.Flags().StringVar(&resyncLoadedDir, "loaded", "", "override the loaded packages folder")
	resyncCmd.Flags().StringVar(&resyncAvailableDirs, "available", "", "override the library folders (comma separated)")
	RootCmd.AddCommand(resyncCmd)
}
