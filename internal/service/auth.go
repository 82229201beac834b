package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Ограничения на пароль при регистрации
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
)

// RegisterInput данные регистрации
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	TelegramID *int64
}

// Validate проверяет данные регистрации
func (in RegisterInput) Validate() error {
	var errs model.ValidationErrors
	errs.Add(model.ValidateLength("name", in.Name, 1, 100))
	errs.Add(model.ValidateEmail("email", NormalizeEmail(in.Email)))
	errs.Add(model.ValidateLength("password", in.Password, MinPasswordLength, MaxPasswordLength))
	return errs.Err()
}

// LoginInput данные входа
type LoginInput struct {
	Email      string
	Password   string
	TelegramID *int64
}

// AuthService отвечает за регистрацию, вход и проверку токенов
type AuthService struct {
	users      model.UserRepository
	tokens     *TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(users model.UserRepository, tokens *TokenManager, bcryptCost int, logger *zap.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// HashPassword хеширует пароль bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register создает учетную запись и выдает пару токенов
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, *TokenPair, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	email := NormalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, fmt.Errorf("email %s is already registered: %w", email, model.ErrConflict)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}

	if in.TelegramID != nil {
		if _, err := s.users.GetByTelegramID(ctx, *in.TelegramID); err == nil {
			return nil, nil, fmt.Errorf("telegram id is already linked: %w", model.ErrConflict)
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, nil, err
		}
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          &email,
		HashedPassword: &hash,
		TelegramID:     in.TelegramID,
		Role:           model.RoleUser,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.Bool("telegram", user.HasChat()))
	return user, tokens, nil
}

// Login проверяет email и пароль и выдает пару токенов
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenPair, error) {
	if in.Email == "" || in.Password == "" {
		if in.TelegramID != nil {
			return nil, model.ValidationError{Field: "telegram_id", Message: "telegram login is available to the bot only"}
		}
		return nil, model.ValidationError{Field: "email", Message: "email and password are required"}
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(in.Email))
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("incorrect email or password: %w", model.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if user.HashedPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(in.Password)) != nil {
		return nil, fmt.Errorf("incorrect email or password: %w", model.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, model.ErrInactive
	}

	return s.tokens.IssuePair(user.ID)
}

// TelegramLogin выдает токены пользователю по Telegram ID. Доступно только доверенному боту.
func (s *AuthService) TelegramLogin(ctx context.Context, telegramID int64) (*TokenPair, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, model.ErrInactive
	}

	return s.tokens.IssuePair(user.ID)
}

// Refresh выдает новую пару токенов по refresh токену
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.loadSubject(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.tokens.IssuePair(user.ID)
}

// Authenticate возвращает пользователя по access токену
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := s.tokens.Parse(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return s.loadSubject(ctx, userID)
}

func (s *AuthService) loadSubject(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("unknown token subject: %w", model.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, model.ErrInactive
	}
	return user, nil
}
