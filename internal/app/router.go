// Package app собирает процессы API сервера и Telegram-бота.
package app

import (
	"context"
	"errors"
	"strings"

	"dailymind/internal/external/telegram"
	"dailymind/internal/formatter"
	"dailymind/internal/handlers"
	"dailymind/internal/middleware"
	"dailymind/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Router передает обновления в пул воркеров и маршрутизирует команды
type Router struct {
	handlers *handlers.Handlers
	chain    *middleware.Chain
	pool     *worker.Pool
	logger   *zap.Logger
}

// NewRouter создает роутер обновлений
func NewRouter(h *handlers.Handlers, chain *middleware.Chain, pool *worker.Pool, logger *zap.Logger) *Router {
	return &Router{
		handlers: h,
		chain:    chain,
		pool:     pool,
		logger:   logger,
	}
}

// HandleUpdate ставит обновление в очередь пула
func (r *Router) HandleUpdate(update tgbotapi.Update) {
	job := worker.Job{
		UpdateID: update.UpdateID,
		UserID:   telegram.UserID(update),
		Action:   updateAction(update),
		Handler: func(ctx context.Context) error {
			r.chain.Then(func(u tgbotapi.Update) {
				r.dispatch(ctx, u)
			})(update)
			return nil
		},
	}

	err := r.pool.Submit(job)
	switch {
	case err == nil:
	case errors.Is(err, worker.ErrQueueFull):
		r.logger.Warn("Update dropped, queue is full",
			zap.Int("update_id", update.UpdateID),
			zap.Int64("user_id", job.UserID))
		if chatID := telegram.ChatID(update); chatID != 0 {
			r.handlers.Notify(chatID, formatter.ErrorRateLimited)
		}
	default:
		r.logger.Warn("Failed to submit update", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

// BotCommands возвращает меню команд
func (r *Router) BotCommands() []tgbotapi.BotCommand {
	return r.handlers.BotCommands()
}

func (r *Router) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		r.handlers.Callback(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	if !message.IsCommand() {
		r.handlers.Text(ctx, message)
		return
	}

	chatID, telegramID := message.Chat.ID, message.From.ID

	switch strings.ToLower(message.Command()) {
	case "start":
		r.handlers.Start(ctx, message)
	case "today":
		r.handlers.Today(ctx, chatID, telegramID)
	case "done":
		r.handlers.Done(ctx, chatID, telegramID)
	case "skip":
		r.handlers.Skip(ctx, chatID, telegramID)
	case "progress":
		r.handlers.Progress(ctx, chatID, telegramID)
	case "help":
		r.handlers.Help(chatID)
	case "menu":
		r.handlers.Menu(chatID)
	case "cancel":
		r.handlers.Cancel(ctx, chatID)
	default:
		r.handlers.Unknown(chatID)
	}
}

func updateAction(update tgbotapi.Update) string {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return "/" + update.Message.Command()
	case update.Message != nil:
		return "text"
	case update.CallbackQuery != nil:
		return "callback"
	}
	return "unknown"
}
