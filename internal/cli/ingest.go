package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vidstats/vidstats/internal/service"
)

var ingestDBPath string

var ingestCmd = &cobra.Command{
	Use:   "ingest <export.json>",
	Short: "Bulk-load a JSON export of videos and snapshots into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if ingestDBPath != "" {
			cfg.StorePath = ingestDBPath
		}

		ctx := cmd.Context()
		store := service.NewStore(cfg.StorePath)
		if err := store.Bootstrap(ctx); err != nil {
			return err
		}

		stats, err := service.NewLoader(store).LoadFile(ctx, args[0])
		if err != nil {
			return err
		}

		log.Info().
			Str("file", args[0]).
			Str("store", cfg.StorePath).
			Int("videos", stats.SuccessfulVideos).
			Int("snapshots", stats.TotalSnapshots).
			Int("failed", stats.FailedVideos).
			Msg("ingest finished")
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "", "store file to load into (defaults to the configured path)")
}
