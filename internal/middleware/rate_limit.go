package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RateLimiter ограничивает количество запросов пользователя в скользящем окне
type RateLimiter struct {
	requests map[int64][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewRateLimiter создает новый rate limiter
func NewRateLimiter(limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

// Allow проверяет, разрешен ли запрос пользователя
func (rl *RateLimiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.recent(rl.requests[userID], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.requests[userID] = valid
		rl.logger.Warn("Rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int("requests", len(valid)),
			zap.Int("limit", rl.limit))
		return false
	}

	rl.requests[userID] = append(valid, now)
	return true
}

// Cleanup очищает старые записи
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := rl.now().Add(-rl.window)
	for userID, requests := range rl.requests {
		valid := rl.recent(requests, windowStart)
		if len(valid) == 0 {
			delete(rl.requests, userID)
		} else {
			rl.requests[userID] = valid
		}
	}
}

func (rl *RateLimiter) recent(requests []time.Time, windowStart time.Time) []time.Time {
	valid := requests[:0]
	for _, reqTime := range requests {
		if reqTime.After(windowStart) {
			valid = append(valid, reqTime)
		}
	}
	return valid
}

// RateLimitMiddleware отклоняет обновления сверх лимита
func RateLimitMiddleware(rl *RateLimiter, notify Notifier, logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next HandlerFunc) {
		chatID, user := chatAndUser(update)
		if user == nil {
			next(update)
			return
		}

		if !rl.Allow(user.ID) {
			if notify != nil && update.Message != nil {
				notify(chatID, "⏳ Слишком много запросов. Подождите минуту.")
			}
			return
		}

		next(update)
	}
}
