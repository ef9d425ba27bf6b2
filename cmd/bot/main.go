package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gemini-relay-bot/internal/common/config"
	"gemini-relay-bot/internal/common/logger"
	"gemini-relay-bot/internal/platform/sqlite"
)

const serviceName = "gemini-relay-bot"

// @title           Gemini Relay Bot API
// @version         1.0
// @description     Webhook, health, debug and message editor endpoints of the Gemini relay Telegram bot.

// @BasePath  /

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init data string

// @tag.name system
// @tag.description Webhook and health

// @tag.name debug
// @tag.description Stored data inspection, debug mode only

// @tag.name webapp
// @tag.description Message editor Mini App

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var mode string

	root := &cobra.Command{
		Use:           "bot",
		Short:         "Telegram bot relaying photos and text to Gemini, Google Forms and Apps Script",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(mode)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := newApp(ctx, cfg)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to initialize")
				return err
			}
			defer app.Close()

			if err := app.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("Bot stopped with error")
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&mode, "mode", "", "polling or webhook; overrides BOT_MODE")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(mode)
			if err != nil {
				return err
			}
			// NewClient migrates on open
			db, err := sqlite.NewClient(cmd.Context(), cfg.Database.Path)
			if err != nil {
				logger.Error().Err(err).Msg("Migration failed")
				return err
			}
			logger.Info().Str("path", cfg.Database.Path).Msg("Schema is up to date")
			return db.Close()
		},
	})

	return root
}

func loadConfig(mode string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(serviceName, false)
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
	}

	logger.Init(serviceName, cfg.Debug)

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("Invalid configuration")
		return nil, err
	}
	return cfg, nil
}
