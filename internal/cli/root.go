package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vidstats/vidstats/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "vidstats",
	Short: "Natural-language statistics service for video engagement data",
	Long: `vidstats answers natural-language questions about video engagement
statistics. Each question is turned into a single SQL statement by a
hosted language model, executed against a local SQLite store, and
returned as one formatted number over HTTP or Telegram.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration and applies the logging setup.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return cfg, nil
}
