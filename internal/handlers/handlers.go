// Package handlers содержит обработчики команд и кнопок бота.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"dailymind/internal/api/dto"
	"dailymind/internal/apiclient"
	"dailymind/internal/conversation"
	"dailymind/internal/external/telegram"
	"dailymind/internal/formatter"
	"dailymind/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Backend методы API, которыми пользуется бот
type Backend interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)
	TelegramLogin(ctx context.Context, telegramID int64) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	TodayTask(ctx context.Context, token string) (*dto.AssignmentResponse, error)
	CompleteTask(ctx context.Context, token string, assignmentID uuid.UUID, answer *string) (*dto.AssignmentResponse, error)
	Progress(ctx context.Context, token string) (*model.Progress, error)
}

// errNotRegistered пользователь с этим Telegram ID не зарегистрирован
var errNotRegistered = errors.New("telegram user is not registered")

// Handlers содержит все обработчики бота
type Handlers struct {
	api      Backend
	sessions *conversation.Manager
	botAPI   telegram.BotAPI
	logger   *zap.Logger
}

// New создает обработчики
func New(api Backend, sessions *conversation.Manager, botAPI telegram.BotAPI, logger *zap.Logger) *Handlers {
	return &Handlers{
		api:      api,
		sessions: sessions,
		botAPI:   botAPI,
		logger:   logger,
	}
}

// BotCommands возвращает меню команд бота
func (h *Handlers) BotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "today", Description: "Задание на сегодня"},
		{Command: "done", Description: "Отметить задание выполненным"},
		{Command: "progress", Description: "Мой прогресс"},
		{Command: "help", Description: "Справка"},
		{Command: "cancel", Description: "Отменить текущее действие"},
	}
}

// withAuth вызывает fn с действующим access токеном.
// При 401 токены обновляются через refresh, затем через вход по Telegram ID.
func (h *Handlers) withAuth(ctx context.Context, session *conversation.Session, telegramID int64, fn func(token string) error) error {
	if !session.Authorized() {
		if err := h.login(ctx, session, telegramID); err != nil {
			return err
		}
	}

	err := fn(session.AccessToken)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}

	h.logger.Debug("Access token rejected, refreshing", zap.Int64("chat_id", session.ChatID))

	if !h.refresh(ctx, session) {
		if err := h.login(ctx, session, telegramID); err != nil {
			return err
		}
	}

	return fn(session.AccessToken)
}

// login получает токены через вход бота по Telegram ID
func (h *Handlers) login(ctx context.Context, session *conversation.Session, telegramID int64) error {
	tokens, err := h.api.TelegramLogin(ctx, telegramID)
	if errors.Is(err, apiclient.ErrNotFound) {
		session.ClearTokens()
		return errNotRegistered
	}
	if err != nil {
		return fmt.Errorf("telegram login failed: %w", err)
	}

	session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	return h.sessions.Save(ctx, session)
}

// refresh обновляет пару токенов, возвращает false если refresh токен недействителен
func (h *Handlers) refresh(ctx context.Context, session *conversation.Session) bool {
	if session.RefreshToken == "" {
		return false
	}

	tokens, err := h.api.Refresh(ctx, session.RefreshToken)
	if err != nil {
		h.logger.Debug("Token refresh failed", zap.Int64("chat_id", session.ChatID), zap.Error(err))
		return false
	}

	session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	if err := h.sessions.Save(ctx, session); err != nil {
		h.logger.Warn("Failed to save refreshed tokens", zap.Error(err))
	}
	return true
}

// errorText переводит ошибку в сообщение пользователю
func errorText(err error) string {
	switch {
	case errors.Is(err, errNotRegistered):
		return formatter.ErrorNoToken
	case errors.Is(err, apiclient.ErrUnauthorized):
		return formatter.ErrorAuth
	case errors.Is(err, apiclient.ErrForbidden):
		return formatter.ErrorInactive
	case errors.Is(err, apiclient.ErrRateLimited):
		return formatter.ErrorRateLimited
	default:
		return formatter.ErrorGeneral
	}
}

// replyError сообщает пользователю об ошибке и логирует неожиданные ошибки
func (h *Handlers) replyError(chatID int64, action string, err error) {
	if !errors.Is(err, errNotRegistered) {
		h.logger.Error("Bot action failed",
			zap.String("action", action),
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	h.send(chatID, errorText(err), nil)
}

// send отправляет HTML сообщение, ошибка отправки только логируется
func (h *Handlers) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	var err error
	if markup != nil {
		err = h.botAPI.SendMessageWithMarkup(chatID, text, *markup)
	} else {
		err = h.botAPI.SendMessage(chatID, text)
	}
	if err != nil {
		h.logger.Warn("Failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// Notify отправляет служебное сообщение. Используется middleware.
func (h *Handlers) Notify(chatID int64, text string) {
	h.send(chatID, text, nil)
}
