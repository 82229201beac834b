package handlers

import (
	"context"
	"errors"

	"dailymind/internal/api/dto"
	"dailymind/internal/apiclient"
	"dailymind/internal/conversation"
	"dailymind/internal/formatter"
	"dailymind/internal/keyboard"
	"dailymind/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Start обрабатывает /start: вход существующего пользователя или начало регистрации
func (h *Handlers) Start(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "start", err)
		return
	}

	err = h.login(ctx, session, message.From.ID)
	switch {
	case err == nil:
		if err := h.sessions.Reset(ctx, session); err != nil {
			h.logger.Warn("Failed to reset session", zap.Error(err))
		}
		menu := keyboard.MainMenu()
		h.send(chatID, formatter.WelcomeExistingUser, &menu)
	case errors.Is(err, errNotRegistered):
		h.send(chatID, formatter.WelcomeNewUser, nil)
		h.send(chatID, formatter.AskName, nil)
		session.Name, session.Email = "", ""
		if err := h.sessions.Transition(ctx, session, conversation.StateRegistrationName); err != nil {
			h.replyError(chatID, "start", err)
		}
	default:
		h.replyError(chatID, "start", err)
	}
}

// Today показывает задание на сегодня, назначая его при необходимости
func (h *Handlers) Today(ctx context.Context, chatID, telegramID int64) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "today", err)
		return
	}

	assignment, err := h.todayAssignment(ctx, session, telegramID)
	if errors.Is(err, apiclient.ErrNotFound) {
		h.send(chatID, formatter.NoTaskToday, nil)
		return
	}
	if err != nil {
		h.replyError(chatID, "today", err)
		return
	}

	h.showAssignment(chatID, assignment)
}

// Done начинает выполнение задания на сегодня и ждет ответа пользователя
func (h *Handlers) Done(ctx context.Context, chatID, telegramID int64) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "done", err)
		return
	}

	assignment, err := h.todayAssignment(ctx, session, telegramID)
	if errors.Is(err, apiclient.ErrNotFound) {
		h.send(chatID, formatter.NoTaskToday, nil)
		return
	}
	if err != nil {
		h.replyError(chatID, "done", err)
		return
	}

	if assignment.IsCompleted() {
		completed := keyboard.Completed()
		h.send(chatID, formatter.TaskAlreadyCompleted, &completed)
		return
	}

	h.askAnswer(ctx, session, assignment.ID)
}

// Skip завершает ожидающее задание без ответа
func (h *Handlers) Skip(ctx context.Context, chatID, telegramID int64) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "skip", err)
		return
	}

	if session.State != conversation.StateAwaitingAnswer || session.AssignmentID == nil {
		h.send(chatID, formatter.NothingToSkip, nil)
		return
	}

	h.complete(ctx, session, telegramID, nil)
}

// Progress показывает статистику пользователя
func (h *Handlers) Progress(ctx context.Context, chatID, telegramID int64) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "progress", err)
		return
	}

	var progress *model.Progress
	err = h.withAuth(ctx, session, telegramID, func(token string) error {
		var callErr error
		progress, callErr = h.api.Progress(ctx, token)
		return callErr
	})
	if err != nil {
		h.replyError(chatID, "progress", err)
		return
	}

	menu := keyboard.MainMenu()
	h.send(chatID, formatter.FormatProgress(progress), &menu)
}

// Help показывает справку
func (h *Handlers) Help(chatID int64) {
	menu := keyboard.MainMenu()
	h.send(chatID, formatter.HelpMessage, &menu)
}

// Menu показывает главное меню
func (h *Handlers) Menu(chatID int64) {
	menu := keyboard.MainMenu()
	h.send(chatID, formatter.MainMenu, &menu)
}

// Cancel возвращает диалог в исходное состояние
func (h *Handlers) Cancel(ctx context.Context, chatID int64) {
	session, err := h.sessions.Get(ctx, chatID)
	if err != nil {
		h.replyError(chatID, "cancel", err)
		return
	}

	if session.IsIdle() {
		h.send(chatID, formatter.NothingToCancel, nil)
		return
	}

	if err := h.sessions.Reset(ctx, session); err != nil {
		h.replyError(chatID, "cancel", err)
		return
	}

	menu := keyboard.MainMenu()
	h.send(chatID, formatter.Cancelled, &menu)
}

// Unknown отвечает на неизвестную команду
func (h *Handlers) Unknown(chatID int64) {
	h.send(chatID, formatter.UnknownCommand, nil)
}

// todayAssignment запрашивает задание на сегодня
func (h *Handlers) todayAssignment(ctx context.Context, session *conversation.Session, telegramID int64) (*dto.AssignmentResponse, error) {
	var assignment *dto.AssignmentResponse
	err := h.withAuth(ctx, session, telegramID, func(token string) error {
		var callErr error
		assignment, callErr = h.api.TodayTask(ctx, token)
		return callErr
	})
	return assignment, err
}

// showAssignment отправляет карточку задания с подходящей клавиатурой
func (h *Handlers) showAssignment(chatID int64, assignment *dto.AssignmentResponse) {
	text := formatter.FormatTask(assignment.Task.Model())
	if assignment.IsCompleted() {
		completed := keyboard.Completed()
		h.send(chatID, text+"\n"+formatter.TaskAlreadyCompleted, &completed)
		return
	}

	markup := keyboard.Task(assignment.ID)
	h.send(chatID, text, &markup)
}

// askAnswer переводит диалог в ожидание ответа на задание
func (h *Handlers) askAnswer(ctx context.Context, session *conversation.Session, assignmentID uuid.UUID) {
	if err := h.sessions.AwaitAnswer(ctx, session, assignmentID); err != nil {
		h.replyError(session.ChatID, "await_answer", err)
		return
	}

	skip := keyboard.Skip()
	h.send(session.ChatID, formatter.AskTaskAnswer, &skip)
}

// complete отмечает ожидающее назначение выполненным и сбрасывает диалог
func (h *Handlers) complete(ctx context.Context, session *conversation.Session, telegramID int64, answer *string) {
	assignmentID := *session.AssignmentID

	err := h.withAuth(ctx, session, telegramID, func(token string) error {
		_, callErr := h.api.CompleteTask(ctx, token, assignmentID, answer)
		return callErr
	})

	if resetErr := h.sessions.Reset(ctx, session); resetErr != nil {
		h.logger.Warn("Failed to reset session", zap.Error(resetErr))
	}

	if err != nil {
		h.replyError(session.ChatID, "complete", err)
		return
	}

	h.logger.Info("Task completed via bot",
		zap.Int64("chat_id", session.ChatID),
		zap.String("assignment_id", assignmentID.String()),
		zap.Bool("with_answer", answer != nil))

	completed := keyboard.Completed()
	h.send(session.ChatID, formatter.TaskCompleted, &completed)
}
