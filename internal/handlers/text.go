package handlers

import (
	"context"
	"strings"
	"unicode/utf8"

	"dailymind/internal/api/dto"
	"dailymind/internal/conversation"
	"dailymind/internal/formatter"
	"dailymind/internal/keyboard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Ограничения регистрации в боте
const (
	minNameLength     = 2
	minPasswordLength = 8
)

// Text обрабатывает обычный текст в зависимости от состояния диалога
func (h *Handlers) Text(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "text", err)
		return
	}

	text := strings.TrimSpace(message.Text)

	switch session.State {
	case conversation.StateRegistrationName:
		h.registrationName(ctx, session, text)
	case conversation.StateRegistrationEmail:
		h.registrationEmail(ctx, session, text)
	case conversation.StateRegistrationPassword:
		// Пароль не должен оставаться в истории чата
		_ = h.botAPI.DeleteMessage(chatID, message.MessageID)
		h.registrationPassword(ctx, session, message.From.ID, message.Text)
	case conversation.StateAwaitingAnswer:
		if session.AssignmentID == nil {
			h.Menu(chatID)
			return
		}
		h.complete(ctx, session, message.From.ID, &text)
	default:
		h.Menu(chatID)
	}
}

func (h *Handlers) registrationName(ctx context.Context, session *conversation.Session, name string) {
	if utf8.RuneCountInString(name) < minNameLength {
		h.send(session.ChatID, formatter.InvalidName, nil)
		return
	}

	session.Name = name
	if err := h.sessions.Transition(ctx, session, conversation.StateRegistrationEmail); err != nil {
		h.replyError(session.ChatID, "registration_name", err)
		return
	}
	h.send(session.ChatID, formatter.FormatAskEmail(name), nil)
}

func (h *Handlers) registrationEmail(ctx context.Context, session *conversation.Session, email string) {
	if !looksLikeEmail(email) {
		h.send(session.ChatID, formatter.InvalidEmail, nil)
		return
	}

	session.Email = strings.ToLower(email)
	if err := h.sessions.Transition(ctx, session, conversation.StateRegistrationPassword); err != nil {
		h.replyError(session.ChatID, "registration_email", err)
		return
	}
	h.send(session.ChatID, formatter.AskPassword, nil)
}

func (h *Handlers) registrationPassword(ctx context.Context, session *conversation.Session, telegramID int64, password string) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		h.send(session.ChatID, formatter.InvalidPassword, nil)
		return
	}

	resp, err := h.api.Register(ctx, dto.RegisterRequest{
		Name:       session.Name,
		Email:      session.Email,
		Password:   password,
		TelegramID: &telegramID,
	})

	email := session.Email
	if resetErr := h.sessions.Reset(ctx, session); resetErr != nil {
		h.logger.Warn("Failed to reset session", zap.Error(resetErr))
	}

	if err != nil {
		h.logger.Warn("Bot registration failed", zap.Int64("chat_id", session.ChatID), zap.Error(err))
		h.send(session.ChatID, formatter.RegistrationError, nil)
		return
	}

	session.SetTokens(resp.AccessToken, resp.RefreshToken)
	if err := h.sessions.Save(ctx, session); err != nil {
		h.logger.Warn("Failed to save tokens", zap.Error(err))
	}

	h.logger.Info("User registered via bot", zap.Int64("chat_id", session.ChatID))
	menu := keyboard.MainMenu()
	h.send(session.ChatID, formatter.FormatRegistrationSuccess(email), &menu)
}

// looksLikeEmail проверяет наличие "@" и точки в домене
func looksLikeEmail(value string) bool {
	local, domain, ok := strings.Cut(value, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
