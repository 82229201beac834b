package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBotAPI struct {
	sent map[int64]string
}

func (f *fakeBotAPI) SendMessage(chatID int64, text string) error {
	f.sent[chatID] = text
	return nil
}

func (f *fakeBotAPI) SendMessageWithMarkup(chatID int64, text string, markup any) error {
	return f.SendMessage(chatID, text)
}

func (f *fakeBotAPI) EditMessageWithMarkup(int64, int, string, *tgbotapi.InlineKeyboardMarkup) error {
	return nil
}

func (f *fakeBotAPI) DeleteMessage(int64, int) error              { return nil }
func (f *fakeBotAPI) AnswerCallback(string, string) error         { return nil }
func (f *fakeBotAPI) SetBotCommands([]tgbotapi.BotCommand) error { return nil }

func TestSender(t *testing.T) {
	api := &fakeBotAPI{sent: map[int64]string{}}
	sender := NewSender(api, zap.NewNop())

	assert.NoError(t, sender.Send(context.Background(), 42, "<b>привет</b>"))
	assert.Equal(t, "<b>привет</b>", api.sent[42])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, 43, "x"), context.Canceled)
	assert.NotContains(t, api.sent, int64(43))

	assert.NoError(t, NewLogSender(zap.NewNop()).Send(context.Background(), 1, "x"))
}

func TestUpdateHelpers(t *testing.T) {
	tests := []struct {
		name     string
		user     *tgbotapi.User
		expected string
	}{
		{name: "nil", user: nil, expected: "unknown"},
		{name: "username", user: &tgbotapi.User{ID: 1, UserName: "anna"}, expected: "@anna"},
		{name: "full name", user: &tgbotapi.User{ID: 2, FirstName: "Анна", LastName: "К"}, expected: "Анна К"},
		{name: "id only", user: &tgbotapi.User{ID: 3}, expected: "user_3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserIdentifier(tt.user))
		})
	}

	update := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 70}},
	}}
	assert.Equal(t, int64(7), UserID(update))
	assert.Equal(t, int64(70), ChatID(update))
	assert.Equal(t, "callback", updateType(update))
}
