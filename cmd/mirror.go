package cmd

import (
	"context"
	"log"

	"var-manager/core/catalog"
	"var-manager/core/config"
	"var-manager/core/logger"
	"var-manager/core/storage"
	"var-manager/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mirrorPrune bool

// mirrorCmd represents the mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror archived packages into object storage and exit",
	Long: `Rebuilds the catalog, uploads every archived package variant not already
in the mirror bucket, and optionally prunes objects that left the archived role.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg.Log.Format = "console"

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()

		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// The mirror selects from published records, so a scan has to
		// run first. The persistent cache is skipped; a one-shot upload
		// pass does not warrant warming it.
		parser := catalog.NewParser(nil, nil, logg)
		cat := catalog.New(parser, nil, logg, cfg.Scan.Workers)

		ctx := context.Background()
		loaded, other := catalog.DiscoverPaths(cfg.Scan.LoadedDir, cfg.Scan.AvailableDirList())
		if _, err := cat.Resync(ctx, loaded, other); err != nil {
			logg.Fatal("Catalog scan failed", zap.Error(err))
		}

		svc := mirror.NewService(client, cfg.Storage.Bucket, cat.Store(), logg)
		report, err := svc.MirrorArchived(ctx)
		if err != nil {
			logg.Fatal("Mirror pass failed", zap.Error(err))
		}
		logg.Info("Mirror pass complete",
			zap.Int("candidates", report.Candidates),
			zap.Int("uploaded", report.Uploaded),
			zap.Int("already_mirrored", report.AlreadyMirrored),
			zap.Strings("failed", report.Failed))

		if mirrorPrune {
			removed, err := svc.Prune(ctx)
			if err != nil {
				logg.Fatal("Mirror prune failed", zap.Error(err))
			}
			logg.Info("Mirror prune complete", zap.Strings("removed", removed))
		}
	},
}

func init() {
	mirrorCmd.Flags().BoolVar(&mirrorPrune, "prune", false, "remove mirrored objects that are no longer archived")
	RootCmd.AddCommand(mirrorCmd)
}
