package apiclient

import (
	"context"
	"fmt"
	"math"
	"time"

	"dailymind/internal/config"

	"go.uber.org/zap"
)

// WithRetry выполняет функцию с экспоненциальной задержкой между попытками.
// Повторяются только ошибки, для которых shouldRetry возвращает true.
func WithRetry(ctx context.Context, logger *zap.Logger, cfg config.RetryConfig, shouldRetry func(error) bool, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Debug("Request succeeded after retry",
					zap.Int("attempt", attempt+1),
					zap.Int("max_retries", cfg.MaxRetries))
			}
			return nil
		}

		lastErr = err

		if !shouldRetry(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt)))
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		logger.Debug("Request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", cfg.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("request failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}
