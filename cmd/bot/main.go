// Package main запускает Telegram-бота DailyMind.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dailymind/internal/app"
	"dailymind/internal/config"
	"dailymind/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{
		Level:      cfg.App.LogLevel,
		Path:       cfg.App.LogPath,
		AppDataDir: cfg.App.AppDataDir,
		FileOutput: true,
	}).Named("bot")
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatal("Invalid bot configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := app.NewComponentFactory(cfg, log).CreateBot(ctx)
	if err != nil {
		log.Fatal("Failed to create bot", zap.Error(err))
	}

	err = bot.Start(ctx)
	bot.Stop()
	if err != nil {
		log.Error("Bot stopped with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Bot stopped successfully")
}
