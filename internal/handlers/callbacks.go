package handlers

import (
	"context"
	"errors"

	"dailymind/internal/apiclient"
	"dailymind/internal/formatter"
	"dailymind/internal/keyboard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callback обрабатывает нажатия inline кнопок
func (h *Handlers) Callback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	telegramID := query.From.ID
	data := query.Data

	if err := h.botAPI.AnswerCallback(query.ID, ""); err != nil {
		h.logger.Debug("Failed to answer callback", zap.Error(err))
	}

	switch data {
	case keyboard.CallbackMainMenu:
		h.Menu(chatID)
		return
	case keyboard.CallbackTodayTask:
		h.Today(ctx, chatID, telegramID)
		return
	case keyboard.CallbackMyProgress:
		h.Progress(ctx, chatID, telegramID)
		return
	case keyboard.CallbackHelp:
		h.Help(chatID)
		return
	case keyboard.CallbackSkip:
		h.Skip(ctx, chatID, telegramID)
		return
	}

	if id, ok := keyboard.ParseAssignmentCallback(data, keyboard.CallbackCompletePrefix); ok {
		session, err := h.sessions.Get(ctx, chatID)
		if err != nil {
			h.replyError(chatID, "complete_task", err)
			return
		}
		h.askAnswer(ctx, session, id)
		return
	}

	if id, ok := keyboard.ParseAssignmentCallback(data, keyboard.CallbackTaskDetailPrefix); ok {
		h.taskDetails(ctx, chatID, telegramID, id.String())
		return
	}

	h.logger.Warn("Unknown callback", zap.String("data", data), zap.Int64("chat_id", chatID))
	h.send(chatID, formatter.UnknownCallback, nil)
}

// taskDetails показывает карточку задания, если назначение все еще актуально
func (h *Handlers) taskDetails(ctx context.Context, chatID, telegramID int64, assignmentID string) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "task_details", err)
		return
	}

	assignment, err := h.todayAssignment(ctx, session, telegramID)
	if errors.Is(err, apiclient.ErrNotFound) || (err == nil && assignment.ID.String() != assignmentID) {
		h.send(chatID, formatter.NoTaskToday, nil)
		return
	}
	if err != nil {
		h.replyError(chatID, "task_details", err)
		return
	}

	h.showAssignment(chatID, assignment)
}
