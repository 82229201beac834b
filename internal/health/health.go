// Package health содержит health check сервер.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckFunc проверяет один компонент
type CheckFunc func(ctx context.Context) error

// checkTimeout ограничивает время одной проверки
const checkTimeout = 3 * time.Second

// Server представляет health check сервер
type Server struct {
	server *http.Server
	checks map[string]CheckFunc
	logger *zap.Logger
}

// NewServer создает новый health check сервер
func NewServer(port string, logger *zap.Logger) *Server {
	s := &Server{
		checks: make(map[string]CheckFunc),
		logger: logger,
	}

	s.server = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// AddCheck регистрирует проверку компонента для /health и /ready
func (s *Server) AddCheck(name string, check CheckFunc) {
	s.checks[name] = check
}

// Handler возвращает обработчик с маршрутами /health, /ready и /live
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readyHandler)
	router.GET("/live", s.liveHandler)

	return router
}

// Start запускает health check сервер
func (s *Server) Start() error {
	s.logger.Info("Starting health check server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает health check сервер
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("Stopping health check server")
	return s.server.Shutdown(ctx)
}

// healthHandler обрабатывает запросы /health
func (s *Server) healthHandler(c *gin.Context) {
	results, healthy := s.runChecks(c.Request.Context())

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"checks":    results,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// readyHandler обрабатывает запросы /ready
func (s *Server) readyHandler(c *gin.Context) {
	_, ready := s.runChecks(c.Request.Context())

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status, "timestamp": time.Now().Format(time.RFC3339)})
}

// liveHandler обрабатывает запросы /live
func (s *Server) liveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now().Format(time.RFC3339)})
}

// runChecks выполняет все проверки и возвращает их результаты
func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := s.checks[name](checkCtx)
		cancel()

		if err != nil {
			healthy = false
			results[name] = fmt.Sprintf("error: %v", err)
			s.logger.Error("Health check failed", zap.String("component", name), zap.Error(err))
			continue
		}
		results[name] = "ok"
	}

	return results, healthy
}
