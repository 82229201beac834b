// Package main запускает API сервер DailyMind с планировщиком рассылок.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dailymind/internal/app"
	"dailymind/internal/config"
	"dailymind/pkg/logger"

	"github.com/gin-gonic/gin"
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
	}).Named("server")
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal("Invalid server configuration", zap.Error(err))
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := app.NewComponentFactory(cfg, log).CreateServer(ctx)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	err = server.Start(ctx)
	server.Stop()
	if err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server stopped successfully")
}
