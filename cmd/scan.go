package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaneholloman/concertus/internal/config"
	"github.com/shaneholloman/concertus/internal/library"
)

var scanCmd = &cobra.Command{
	Use:   "scan <folder> [folder...]",
	Short: "Scan folders for audio files and update the track catalog",
	Long: `Walks each given folder for audio files, reads their tags, and upserts
them into the sqlite track catalog at the configured catalog path.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cat, err := library.OpenCatalog(cfg.CatalogPath, logger)
	if err != nil {
		slog.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	ctx := context.Background()
	for _, root := range args {
		var found []*library.Track
		if err := library.Walk(root, func(t *library.Track) {
			found = append(found, t)
		}); err != nil {
			slog.Error("scan failed", "root", root, "error", err)
			continue
		}
		if len(found) == 0 {
			slog.Warn("no scannable audio files found", "root", root)
			continue
		}
		if err := cat.UpsertAll(ctx, found); err != nil {
			slog.Error("failed to save scanned tracks", "root", root, "error", err)
			continue
		}
		slog.Info("scanned folder", "root", root, "tracks", len(found))
	}
}
