// Package middleware содержит цепочку middleware для обновлений Telegram.
package middleware

import (
	"time"

	"dailymind/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// HandlerFunc обрабатывает обновление
type HandlerFunc func(update tgbotapi.Update)

// Func оборачивает обработчик
type Func func(update tgbotapi.Update, next HandlerFunc)

// Notifier сообщает пользователю об отказе в обработке
type Notifier func(chatID int64, text string)

// Chain применяет Recovery, Logging, Debounce и RateLimit к обновлениям
type Chain struct {
	rateLimiter *RateLimiter
	debouncer   *Debouncer
	middlewares []Func
	logger      *zap.Logger
}

// New создает цепочку middleware
func New(cfg config.RateLimitConfig, notify Notifier, logger *zap.Logger) *Chain {
	limit := cfg.BotRequests
	if limit <= 0 {
		limit = 10
	}
	window := cfg.BotWindow
	if window <= 0 {
		window = 60 * time.Second
	}

	rateLimiter := NewRateLimiter(limit, window, logger)
	debouncer := NewDebouncer(time.Second, logger)

	return &Chain{
		rateLimiter: rateLimiter,
		debouncer:   debouncer,
		middlewares: []Func{
			RecoveryMiddleware(notify, logger),
			LoggingMiddleware(logger),
			DebounceMiddleware(debouncer, logger),
			RateLimitMiddleware(rateLimiter, notify, logger),
		},
		logger: logger,
	}
}

// Then возвращает обработчик, обернутый всеми middleware
func (c *Chain) Then(handler HandlerFunc) HandlerFunc {
	wrapped := handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw, next := c.middlewares[i], wrapped
		wrapped = func(update tgbotapi.Update) {
			mw(update, next)
		}
	}
	return wrapped
}

// Cleanup очищает устаревшие записи
func (c *Chain) Cleanup() {
	c.rateLimiter.Cleanup()
	c.debouncer.Cleanup()
}

// chatAndUser извлекает чат и пользователя из сообщения или callback
func chatAndUser(update tgbotapi.Update) (chatID int64, user *tgbotapi.User) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, update.Message.From
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, update.CallbackQuery.From
	}
	return 0, nil
}

// action возвращает команду или данные callback для логов и дебаунса
func action(update tgbotapi.Update) string {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return "/" + update.Message.Command()
	case update.Message != nil:
		return "text"
	case update.CallbackQuery != nil:
		return update.CallbackQuery.Data
	}
	return ""
}
