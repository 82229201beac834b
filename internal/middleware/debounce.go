package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"dailymind/internal/external/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Действия с особыми таймаутами дебаунса
var debounceTimeouts = map[string]time.Duration{
	"/today":         2 * time.Second,
	"/done":          2 * time.Second,
	"today_task":     2 * time.Second,
	"complete_task_": 3 * time.Second,
}

// Debouncer предотвращает повторную обработку двойных нажатий
type Debouncer struct {
	requests map[string]time.Time
	mu       sync.Mutex
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewDebouncer создает новый debouncer
func NewDebouncer(timeout time.Duration, logger *zap.Logger) *Debouncer {
	return &Debouncer{
		requests: make(map[string]time.Time),
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// CanProcessRequest проверяет, можно ли обработать запрос
func (d *Debouncer) CanProcessRequest(key string) bool {
	return d.CanProcessRequestWithTimeout(key, d.timeout)
}

// CanProcessRequestWithTimeout проверяет, можно ли обработать запрос с заданным таймаутом
func (d *Debouncer) CanProcessRequestWithTimeout(key string, timeout time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	lastRequest, exists := d.requests[key]

	if !exists || now.Sub(lastRequest) > timeout {
		d.requests[key] = now
		return true
	}

	return false
}

// Cleanup очищает устаревшие записи
func (d *Debouncer) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	threshold := d.now().Add(-time.Minute)
	for key, lastRequest := range d.requests {
		if lastRequest.Before(threshold) {
			delete(d.requests, key)
		}
	}
}

// debounceTimeout возвращает таймаут для действия. Обычный текст не дебаунсится.
func debounceTimeout(act string, def time.Duration) (time.Duration, bool) {
	if act == "text" || act == "" {
		return 0, false
	}
	for prefix, timeout := range debounceTimeouts {
		if strings.HasPrefix(act, prefix) {
			return timeout, true
		}
	}
	if strings.HasPrefix(act, "/") {
		return def, true
	}
	return 0, false
}

// DebounceMiddleware отбрасывает повторные команды и нажатия кнопок
func DebounceMiddleware(debouncer *Debouncer, logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next HandlerFunc) {
		act := action(update)
		timeout, ok := debounceTimeout(act, debouncer.timeout)
		if !ok {
			next(update)
			return
		}

		chatID, user := chatAndUser(update)
		key := fmt.Sprintf("%d:%s", chatID, act)

		if !debouncer.CanProcessRequestWithTimeout(key, timeout) {
			logger.Info("Update debounced",
				zap.String("action", act),
				zap.Int64("chat_id", chatID),
				zap.String("user", telegram.UserIdentifier(user)),
				zap.Int("update_id", update.UpdateID),
				zap.Duration("timeout", timeout))
			return
		}

		next(update)
	}
}
