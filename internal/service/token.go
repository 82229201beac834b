package service

import (
	"fmt"
	"time"

	"dailymind/internal/config"
	"dailymind/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType различает access и refresh токены
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair пара токенов, выдаваемая клиенту
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Claims содержимое токена
type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет JWT токены (HS256)
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager создает новый менеджер токенов
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}
}

// Issue выпускает токен заданного типа
func (m *TokenManager) Issue(userID uuid.UUID, tokenType TokenType) (string, error) {
	ttl := m.accessTTL
	if tokenType == TokenTypeRefresh {
		ttl = m.refreshTTL
	}

	now := m.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssuePair выпускает пару access и refresh токенов
func (m *TokenManager) IssuePair(userID uuid.UUID) (*TokenPair, error) {
	access, err := m.Issue(userID, TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	refresh, err := m.Issue(userID, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Parse проверяет подпись, срок действия и тип токена и возвращает ID пользователя
func (m *TokenManager) Parse(tokenString string, expected TokenType) (uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %v: %w", err, model.ErrUnauthorized)
	}

	if claims.Type != expected {
		return uuid.Nil, fmt.Errorf("unexpected token type %q: %w", claims.Type, model.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token subject: %w", model.ErrUnauthorized)
	}
	return userID, nil
}
