// Package storage содержит работу с базой данных.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dailymind/internal/config"
	"dailymind/internal/model"
	"dailymind/internal/storage/migrations"
	"dailymind/internal/storage/repository"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// Postgres представляет подключение к PostgreSQL
type Postgres struct {
	db     *bun.DB
	logger *zap.Logger
}

var _ model.Store = (*Postgres)(nil)

// NewPostgres создает новое подключение к PostgreSQL с retry логикой
func NewPostgres(cfg config.DatabaseConfig, logger *zap.Logger) (*Postgres, error) {
	maxRetries := cfg.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		logger.Info("Attempting to connect to database",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries))

		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.URL)))

		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		db := bun.NewDB(sqldb, pgdialect.New())

		if cfg.Debug || logger.Core().Enabled(zap.DebugLevel) {
			db.AddQueryHook(bundebug.NewQueryHook(
				bundebug.WithVerbose(true),
				bundebug.FromEnv("BUNDEBUG"),
			))
		}

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
		lastErr = db.PingContext(pingCtx)
		pingCancel()

		if lastErr == nil {
			logger.Info("Connected to PostgreSQL database with Bun ORM",
				zap.Int("attempt", attempt))
			return NewPostgresFromDB(db, logger), nil
		}

		logger.Warn("Failed to connect to database",
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}

		if attempt < maxRetries {
			logger.Info("Retrying connection", zap.Duration("delay", cfg.RetryDelay))
			time.Sleep(cfg.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}

// NewPostgresFromDB оборачивает готовое подключение bun
func NewPostgresFromDB(db *bun.DB, logger *zap.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: logger,
	}
}

// Close закрывает соединение с базой данных
func (p *Postgres) Close() error {
	return p.db.Close()
}

// GetDB возвращает подключение к базе данных
func (p *Postgres) GetDB() *bun.DB {
	return p.db
}

// Ping проверяет доступность базы данных
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Migrate применяет недостающие миграции схемы
func (p *Postgres) Migrate(ctx context.Context) error {
	migrator := migrate.NewMigrator(p.db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			p.logger.Warn("Failed to unlock migrations", zap.Error(err))
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if group.IsZero() {
		p.logger.Info("Database schema is up to date")
		return nil
	}

	p.logger.Info("Applied database migrations", zap.String("group", group.String()))
	return nil
}

// Users возвращает репозиторий пользователей
func (p *Postgres) Users() model.UserRepository {
	return repository.NewUserRepository(p.db, p.logger)
}

// Tasks возвращает репозиторий заданий
func (p *Postgres) Tasks() model.TaskRepository {
	return repository.NewTaskRepository(p.db, p.logger)
}

// Assignments возвращает репозиторий назначений
func (p *Postgres) Assignments() model.AssignmentRepository {
	return repository.NewAssignmentRepository(p.db, p.logger)
}

// RunInTx выполняет fn в транзакции
func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	return runInTx(ctx, p.db, p.logger, fn)
}

// GetSettingRepository возвращает репозиторий настроек
func (p *Postgres) GetSettingRepository() model.SettingRepository {
	return repository.NewSettingRepository(p.db, p.logger)
}

// GetJobRepository возвращает репозиторий задач планировщика
func (p *Postgres) GetJobRepository(loc *time.Location) model.JobRepository {
	return repository.NewJobRepository(p.db, loc, p.logger)
}
