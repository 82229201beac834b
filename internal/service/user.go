package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfilePatch изменения профиля, которые может внести сам пользователь
type ProfilePatch struct {
	Name       *string
	Email      *string
	TelegramID *int64
}

// AdminPatch изменения, доступные администратору
type AdminPatch struct {
	IsActive *bool
	Role     *model.UserRole
}

// UserService содержит бизнес-логику учетных записей
type UserService struct {
	repo   model.UserRepository
	logger *zap.Logger
}

// NewUserService создает новый сервис пользователей
func NewUserService(repo model.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Get возвращает пользователя по ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByTelegramID возвращает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

// GetByEmail возвращает пользователя по email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// List возвращает список пользователей
func (s *UserService) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	return s.repo.List(ctx, filter)
}

// ListNotifiable возвращает активных пользователей с привязанным Telegram
func (s *UserService) ListNotifiable(ctx context.Context) ([]model.User, error) {
	return s.repo.ListNotifiable(ctx)
}

// UpdateProfile частично обновляет профиль пользователя
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}

	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = &email
	}

	if patch.TelegramID != nil {
		telegramID := *patch.TelegramID
		if err := s.ensureTelegramFree(ctx, telegramID, id); err != nil {
			return nil, err
		}
		user.TelegramID = &telegramID
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("user validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User profile updated", zap.String("user_id", id.String()))
	return user, nil
}

// UpdateByAdmin меняет активность и роль пользователя
func (s *UserService) UpdateByAdmin(ctx context.Context, id uuid.UUID, patch AdminPatch) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}

	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("user validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated by admin",
		zap.String("user_id", id.String()),
		zap.Bool("is_active", user.IsActive),
		zap.String("role", user.Role.String()))
	return user, nil
}

// SetActive включает или отключает учетную запись
func (s *UserService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	return s.UpdateByAdmin(ctx, id, AdminPatch{IsActive: &active})
}

// SetRole меняет роль пользователя
func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role model.UserRole) (*model.User, error) {
	return s.UpdateByAdmin(ctx, id, AdminPatch{Role: &role})
}

// Delete удаляет пользователя вместе с назначениями
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, owner uuid.UUID) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != owner {
		return fmt.Errorf("email %s is already registered: %w", email, model.ErrConflict)
	}
	return nil
}

func (s *UserService) ensureTelegramFree(ctx context.Context, telegramID int64, owner uuid.UUID) error {
	existing, err := s.repo.GetByTelegramID(ctx, telegramID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != owner {
		return fmt.Errorf("telegram id %d is already linked: %w", telegramID, model.ErrConflict)
	}
	return nil
}

// NormalizeEmail приводит email к каноническому виду
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
