package middleware

import (
	"testing"
	"time"

	"dailymind/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func commandUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}}
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute, zap.NewNop())
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(1), "request %d", i+1)
	}
	assert.False(t, rl.Allow(1))
	assert.True(t, rl.Allow(2), "limits are per user")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow(1))

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	assert.Empty(t, rl.requests)
}

func TestDebounceTimeout(t *testing.T) {
	tests := []struct {
		action   string
		expected time.Duration
		ok       bool
	}{
		{action: "text", ok: false},
		{action: "/help", expected: time.Second, ok: true},
		{action: "/today", expected: 2 * time.Second, ok: true},
		{action: "complete_task_123", expected: 3 * time.Second, ok: true},
		{action: "main_menu", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			timeout, ok := debounceTimeout(tt.action, time.Second)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, timeout)
		})
	}
}

func TestChain(t *testing.T) {
	var notified []string
	chain := New(config.RateLimitConfig{BotRequests: 2, BotWindow: time.Minute}, func(chatID int64, text string) {
		notified = append(notified, text)
	}, zap.NewNop())

	handled := 0
	handler := chain.Then(func(update tgbotapi.Update) { handled++ })

	t.Run("Повторная команда отбрасывается", func(t *testing.T) {
		handler(commandUpdate(1, "/today"))
		handler(commandUpdate(1, "/today"))
		assert.Equal(t, 1, handled)
	})

	t.Run("Лимит запросов", func(t *testing.T) {
		handler(textUpdate(1, "ответ"))
		handler(textUpdate(1, "еще ответ"))
		assert.Equal(t, 2, handled)
		assert.Len(t, notified, 1)
	})

	t.Run("Паника перехватывается", func(t *testing.T) {
		panicking := chain.Then(func(update tgbotapi.Update) { panic("boom") })
		assert.NotPanics(t, func() { panicking(textUpdate(3, "x")) })
		assert.Contains(t, notified[len(notified)-1], "Произошла ошибка")
	})

	chain.Cleanup()
}
