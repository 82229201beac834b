package app

import (
	"context"
	"sync"

	"dailymind/internal/api"
	"dailymind/internal/health"
	"dailymind/internal/service"
	"dailymind/internal/storage"

	"go.uber.org/zap"
)

// Server процесс API: HTTP сервер, планировщик и health check
type Server struct {
	logger    *zap.Logger
	db        *storage.Postgres
	api       *api.Server
	services  *service.Services
	health    *health.Server
	scheduler bool
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// Start запускает планировщик и серверы, блокируется до ошибки API сервера или отмены ctx
func (s *Server) Start(ctx context.Context) error {
	if s.scheduler {
		if err := s.services.Scheduler.Start(); err != nil {
			s.logger.Error("Failed to start scheduler", zap.Error(err))
		}
	} else {
		s.logger.Info("Scheduler is disabled")
	}

	if s.health != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.health.Start(); err != nil {
				s.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.api.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Stop останавливает компоненты в обратном порядке
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping server gracefully")

		if err := s.api.Shutdown(); err != nil {
			s.logger.Error("Failed to stop API server", zap.Error(err))
		}

		s.services.Scheduler.Stop()

		if s.health != nil {
			if err := s.health.Stop(); err != nil {
				s.logger.Error("Failed to stop health check server", zap.Error(err))
			}
		}
		s.wg.Wait()

		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}

		s.logger.Info("Server stopped")
	})
}
