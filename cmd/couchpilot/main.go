// Couchpilot is a Telegram bot that remote-controls a media-download
// pipeline: it searches indexers via Jackett, hands torrents to
// Transmission, and reorganizes the finished library into a
// Plex-friendly layout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/couchpilot/couchpilot/internal/bot"
	"github.com/couchpilot/couchpilot/internal/config"
	"github.com/couchpilot/couchpilot/internal/restructure"
	"github.com/couchpilot/couchpilot/internal/version"
)

func main() {
	// Handle --version / -v flag
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "--version" || arg == "-v" {
			fmt.Printf("couchpilot v%s\n", version.Version)
			os.Exit(0)
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Telegram.Token == "" {
		logger.Fatal().Str("path", config.Path()).
			Msg("no telegram token: set telegram.token in the config or TELEGRAM_BOT_TOKEN")
	}

	b, err := bot.New(cfg, restructure.GuessitOracle{}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start bot")
	}

	// Pick up config edits without a restart.
	watcher, err := config.Watch(config.Path(), b.Reload)
	if err != nil {
		logger.Warn().Err(err).Msg("config watching disabled")
	} else {
		defer watcher.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("shutting down")
}
