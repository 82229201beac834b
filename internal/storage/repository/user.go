package repository

import (
	"context"
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserRepository реализует интерфейс model.UserRepository
type UserRepository struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db bun.IDB, logger *zap.Logger) model.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user := new(model.User)
	err := r.db.NewSelect().Model(user).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get user by ID", err)
	}
	return user, nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := new(model.User)
	err := r.db.NewSelect().Model(user).Where("u.email = ?", email).Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get user by email", err)
	}
	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user := new(model.User)
	err := r.db.NewSelect().Model(user).Where("u.telegram_id = ?", telegramID).Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get user by telegram ID", err)
	}
	return user, nil
}

// List получает список пользователей
func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	var users []model.User
	query := r.db.NewSelect().Model(&users).Order("u.created_at ASC")

	if filter.IsActive != nil {
		query = query.Where("u.is_active = ?", *filter.IsActive)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, wrapError("failed to list users", err)
	}
	return users, nil
}

// ListNotifiable получает активных пользователей с привязанным Telegram
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.NewSelect().Model(&users).
		Where("u.is_active = ?", true).
		Where("u.telegram_id IS NOT NULL").
		Order("u.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to list notifiable users", err)
	}
	return users, nil
}

// Create создает нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return wrapError("failed to create user", err)
	}

	r.logger.Debug("User created", zap.String("user_id", user.ID.String()))
	return nil
}

// Update обновляет пользователя
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := r.db.NewUpdate().Model(user).WherePK().ExcludeColumn("created_at").Exec(ctx)
	if err != nil {
		return wrapError("failed to update user", err)
	}
	return expectAffected("failed to update user", res)
}

// Delete удаляет пользователя вместе с его назначениями
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*model.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return wrapError("failed to delete user", err)
	}
	return expectAffected("failed to delete user", res)
}
