package cli

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vidstats/vidstats/internal/analyzer"
	"github.com/vidstats/vidstats/internal/bot"
	"github.com/vidstats/vidstats/internal/security"
	"github.com/vidstats/vidstats/internal/server"
	"github.com/vidstats/vidstats/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when a token is configured, the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := service.NewStore(cfg.StorePath)
		if err := store.Bootstrap(ctx); err != nil {
			return err
		}

		// Schema is introspected once here. A reshaped store needs a
		// restart to show up in the prompt.
		schema := store.BuildSchema(ctx)
		if schema.IsEmpty() {
			log.Warn().Str("path", cfg.StorePath).Msg("store has no tables, run ingest first")
		}

		var an *analyzer.Analyzer
		if cfg.AnthropicAPIKey != "" {
			gen := analyzer.NewClaudeGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
			an = analyzer.NewAnalyzer(schema, gen, store,
				security.NewQuestionValidator(),
				security.NewSQLValidator(),
				security.NewAuditLogger(cfg.EnableAuditLogging),
			)
		} else {
			log.Warn().Msg("no Anthropic API key configured, question answering disabled")
		}

		g, gctx := errgroup.WithContext(ctx)

		srv := server.New(cfg, store, an)
		g.Go(func() error {
			return srv.Run(gctx)
		})

		if cfg.TelegramToken != "" {
			// A typed nil analyzer must not leak into the interface;
			// the bot treats a nil answerer as "model disabled".
			var qa bot.QuestionAnswerer
			if an != nil {
				qa = an
			}
			tgBot, err := bot.New(cfg.TelegramToken, qa, store)
			if err != nil {
				return err
			}
			g.Go(func() error {
				tgBot.Run(gctx)
				return nil
			})
		} else {
			log.Info().Msg("no Telegram token configured, bot disabled")
		}

		return g.Wait()
	},
}
