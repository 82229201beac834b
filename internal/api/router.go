// Package api собирает HTTP API: маршруты, middleware и сервер.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dailymind/internal/api/handlers"
	"dailymind/internal/api/middleware"
	"dailymind/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter создает gin движок со всеми маршрутами API
func NewRouter(cfg *config.Config, deps handlers.Deps, limiter *middleware.IPRateLimiter, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.HTTP.CORSOrigins))
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	deps.Logger = logger
	deps.BotSecret = cfg.Auth.BotSecret
	h := handlers.New(deps)

	requireAuth := middleware.RequireAuth(deps.Auth)

	v1 := router.Group(cfg.HTTP.APIPrefix)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/telegram", middleware.RequireBotSecret(cfg.Auth.BotSecret), h.TelegramLogin)
	}

	tasks := v1.Group("/tasks", requireAuth)
	{
		tasks.GET("/today", h.TodayTask)
		tasks.GET("/history", h.TaskHistory)
		tasks.POST("/:id/complete", h.CompleteTask)
	}

	users := v1.Group("/users", requireAuth)
	{
		users.GET("/me", h.Me)
		users.PATCH("/me", h.UpdateMe)
		users.GET("/me/progress", h.MyProgress)
	}

	admin := v1.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/users/:id", h.GetUser)
		admin.PATCH("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/users/:id/progress", h.UserProgress)
		admin.GET("/users/:id/assignments", h.UserAssignments)
		admin.POST("/users/:id/assign-task", h.AssignTask)
		admin.GET("/users/:id/queue/next", h.NextQueued)

		admin.POST("/assignments/:id/schedule", h.ScheduleAssignment)
		admin.DELETE("/assignments/:id", h.DeleteAssignment)

		admin.GET("/tasks/templates", h.ListTemplates)
		admin.POST("/tasks/templates", h.CreateTemplate)
		admin.PATCH("/tasks/templates/:id", h.UpdateTemplate)
		admin.DELETE("/tasks/templates/:id", h.DeleteTemplate)
		admin.GET("/tasks/categories", h.Categories)

		admin.GET("/settings", h.ListSettings)
		admin.PUT("/settings/:key", h.UpdateSetting)

		admin.GET("/scheduler", h.SchedulerStatus)
		admin.POST("/scheduler/jobs/:name/run", h.RunJob)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": cfg.App.Name, "status": "ok"})
	})

	return router
}

// Server HTTP сервер API
type Server struct {
	server          *http.Server
	limiter         *middleware.IPRateLimiter
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer создает сервер API
func NewServer(cfg *config.Config, deps handlers.Deps, logger *zap.Logger) *Server {
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.APIRequestsPerSecond, cfg.RateLimit.APIBurst, logger)

	return &Server{
		server: &http.Server{
			Addr:         ":" + cfg.HTTP.Port,
			Handler:      NewRouter(cfg, deps, limiter, logger),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		limiter:         limiter,
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		logger:          logger,
	}
}

// Start запускает сервер и блокируется до ошибки или остановки
func (s *Server) Start(ctx context.Context) error {
	go s.cleanupVisitors(ctx)

	s.logger.Info("Starting API server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("Stopping API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup(10 * time.Minute)
		}
	}
}
