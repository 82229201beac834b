package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dailymind/internal/api"
	"dailymind/internal/api/handlers"
	"dailymind/internal/apiclient"
	"dailymind/internal/config"
	"dailymind/internal/conversation"
	"dailymind/internal/external/telegram"
	"dailymind/internal/health"
	"dailymind/internal/middleware"
	"dailymind/internal/service"
	"dailymind/internal/storage"
	"dailymind/internal/worker"

	botHandlers "dailymind/internal/handlers"

	"go.uber.org/zap"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(cfg *config.Config, logger *zap.Logger) *ComponentFactory {
	return &ComponentFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.App.AppDataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create app data directory %s: %w", dataDir, err)
	}
	f.logger.Debug("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateDatabase подключается к PostgreSQL и применяет схему
func (f *ComponentFactory) CreateDatabase(ctx context.Context) (*storage.Postgres, error) {
	db, err := storage.NewPostgres(f.config.Database, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// CreateSender возвращает отправителя уведомлений. Без токена бота сообщения только логируются.
func (f *ComponentFactory) CreateSender() (service.Sender, error) {
	if f.config.Telegram.BotToken == "" {
		f.logger.Warn("TELEGRAM_BOT_TOKEN is not set, notifications will only be logged")
		return telegram.NewLogSender(f.logger), nil
	}

	client, err := telegram.NewClient(f.config.Telegram.BotToken, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return telegram.NewSender(client.BotAPI(), f.logger), nil
}

// CreateHealthServer создает health check сервер, nil если он отключен
func (f *ComponentFactory) CreateHealthServer() *health.Server {
	if !f.config.Health.Enabled {
		f.logger.Info("Health check server is disabled")
		return nil
	}
	return health.NewServer(f.config.Health.Port, f.logger)
}

// CreateServer собирает процесс API: база, сервисы, начальные данные, HTTP сервер
func (f *ComponentFactory) CreateServer(ctx context.Context) (*Server, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	db, err := f.CreateDatabase(ctx)
	if err != nil {
		return nil, err
	}

	sender, err := f.CreateSender()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	services := service.NewServices(ctx, db, f.config, sender, f.logger)
	if err := services.Seeder.Seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	apiServer := api.NewServer(f.config, handlers.Deps{
		Auth:      services.Auth,
		Users:     services.Users,
		Content:   services.Content,
		Engine:    services.Engine,
		Settings:  services.Settings,
		Scheduler: services.Scheduler,
	}, f.logger)

	healthServer := f.CreateHealthServer()
	if healthServer != nil {
		healthServer.AddCheck("database", db.Ping)
		healthServer.AddCheck("scheduler", func(context.Context) error {
			if f.config.Schedule.Enabled && !services.Scheduler.IsRunning() {
				return fmt.Errorf("scheduler is not running")
			}
			return nil
		})
	}

	f.logger.Info("Server created successfully")
	return &Server{
		logger:    f.logger,
		db:        db,
		api:       apiServer,
		services:  services,
		health:    healthServer,
		scheduler: f.config.Schedule.Enabled,
	}, nil
}

// CreateSessionStore выбирает хранилище сессий: Redis при заданном REDIS_URL, иначе память процесса
func (f *ComponentFactory) CreateSessionStore(ctx context.Context) (conversation.Store, *conversation.RedisStore, error) {
	if f.config.Redis.URL == "" {
		f.logger.Warn("REDIS_URL is not set, conversation state is kept in memory")
		return conversation.NewMemoryStore(f.config.Bot.SessionTTL), nil, nil
	}

	store, err := conversation.NewRedisStore(f.config.Redis.URL, f.config.Bot.SessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create redis session store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	f.logger.Info("Using redis session store")
	return store, store, nil
}

// CreateBot собирает процесс бота: клиент API, сессии, обработчики, middleware и пул
func (f *ComponentFactory) CreateBot(ctx context.Context) (*Bot, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	store, redisStore, err := f.CreateSessionStore(ctx)
	if err != nil {
		return nil, err
	}

	tgClient, err := telegram.NewClient(f.config.Telegram.BotToken, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	baseURL := strings.TrimRight(f.config.Bot.BackendURL, "/") + f.config.HTTP.APIPrefix
	backend := apiclient.NewClient(baseURL, f.config.Auth.BotSecret, f.config.HTTPClientConfig, f.config.RetryConfig, f.logger)

	sessions := conversation.NewManager(store, f.config.Bot.ConversationTimeout, f.logger)
	h := botHandlers.New(backend, sessions, tgClient.BotAPI(), f.logger)
	chain := middleware.New(f.config.RateLimit, h.Notify, f.logger)
	pool := worker.NewPool(f.config.Bot.Workers, f.config.Bot.QueueSize, f.logger)

	bot := &Bot{
		logger:   f.logger,
		telegram: tgClient,
		router:   NewRouter(h, chain, pool, f.logger),
		pool:     pool,
		chain:    chain,
		health:   f.CreateHealthServer(),
	}

	if redisStore != nil {
		bot.store = redisStore
		if bot.health != nil {
			bot.health.AddCheck("redis", redisStore.Ping)
		}
	}
	if bot.health != nil {
		bot.health.AddCheck("workers", func(context.Context) error {
			if stats := pool.Stats(); stats.QueueSize >= f.config.Bot.QueueSize {
				return fmt.Errorf("update queue is full")
			}
			return nil
		})
	}

	f.logger.Info("Bot created successfully", zap.String("backend", baseURL))
	return bot, nil
}
