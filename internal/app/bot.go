package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dailymind/internal/external/telegram"
	"dailymind/internal/health"
	"dailymind/internal/middleware"
	"dailymind/internal/worker"

	"go.uber.org/zap"
)

// Параметры перезапуска цикла обновлений
const (
	maxRestartAttempts = 10
	restartDelay       = 10 * time.Second
	maxRestartDelay    = 5 * time.Minute
	cleanupInterval    = 5 * time.Minute
)

// sessionCloser закрывает хранилище сессий
type sessionCloser interface {
	Close() error
}

// Bot процесс Telegram-бота
type Bot struct {
	logger   *zap.Logger
	telegram *telegram.Client
	router   *Router
	pool     *worker.Pool
	chain    *middleware.Chain
	health   *health.Server
	store    sessionCloser
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Start запускает воркеры, health check и цикл обновлений с перезапуском
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	b.pool.Start()

	if b.health != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			if err := b.health.Start(); err != nil {
				b.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				b.chain.Cleanup()
				stats := b.pool.Stats()
				b.logger.Debug("Worker pool stats",
					zap.Int64("processed", stats.ProcessedJobs),
					zap.Int64("failed", stats.FailedJobs),
					zap.Int("queue", stats.QueueSize))
			case <-ctx.Done():
				return
			}
		}
	}()

	restartAttempts := 0

	for {
		err := b.telegram.Start(ctx, b.router)
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			b.logger.Info("Update loop stopped")
			return nil
		}

		restartAttempts++
		b.logger.Error("Update loop error",
			zap.Error(err),
			zap.Int("restart_attempt", restartAttempts),
			zap.Int("max_attempts", maxRestartAttempts))

		if restartAttempts > maxRestartAttempts {
			return fmt.Errorf("max restart attempts reached: %w", err)
		}

		delay := time.Duration(restartAttempts) * restartDelay
		if delay > maxRestartDelay {
			delay = maxRestartDelay
		}

		b.logger.Info("Waiting before restart", zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// Stop дожидается обработки принятых обновлений и освобождает ресурсы
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.logger.Info("Stopping bot gracefully")

		b.pool.Stop()

		if b.health != nil {
			if err := b.health.Stop(); err != nil {
				b.logger.Error("Failed to stop health check server", zap.Error(err))
			}
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			b.wg.Wait()
		}()

		select {
		case <-done:
		case <-time.After(30 * time.Second):
			b.logger.Warn("Graceful shutdown timeout exceeded, forcing stop")
		}

		if b.store != nil {
			if err := b.store.Close(); err != nil {
				b.logger.Error("Failed to close session store", zap.Error(err))
			}
		}

		b.logger.Info("Bot stopped")
	})
}
