package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dailymind/internal/api/dto"
	"dailymind/internal/apiclient"
	"dailymind/internal/conversation"
	"dailymind/internal/formatter"
	"dailymind/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testChatID     int64 = 100
	testTelegramID int64 = 100
)

type fakeBackend struct {
	registered  map[int64]bool
	assignment  *dto.AssignmentResponse
	registerReq *dto.RegisterRequest
	completed   []*string
	loginCalls  int
	refreshes   int
	rejectToken string
	issued      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{registered: map[int64]bool{}}
}

func (f *fakeBackend) tokens() *dto.TokenResponse {
	f.issued++
	return &dto.TokenResponse{
		AccessToken:  fmt.Sprintf("access-%d", f.issued),
		RefreshToken: fmt.Sprintf("refresh-%d", f.issued),
		TokenType:    "bearer",
	}
}

func (f *fakeBackend) check(token string) error {
	if token == "" || token == f.rejectToken {
		return &apiclient.Error{Status: 401, Code: "UNAUTHORIZED"}
	}
	return nil
}

func (f *fakeBackend) Register(_ context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	f.registerReq = &req
	f.registered[*req.TelegramID] = true
	return &dto.RegisterResponse{TokenResponse: *f.tokens()}, nil
}

func (f *fakeBackend) TelegramLogin(_ context.Context, telegramID int64) (*dto.TokenResponse, error) {
	f.loginCalls++
	if !f.registered[telegramID] {
		return nil, &apiclient.Error{Status: 404, Code: "NOT_FOUND"}
	}
	return f.tokens(), nil
}

func (f *fakeBackend) Refresh(_ context.Context, refreshToken string) (*dto.TokenResponse, error) {
	f.refreshes++
	if refreshToken == "" {
		return nil, &apiclient.Error{Status: 401}
	}
	return f.tokens(), nil
}

func (f *fakeBackend) TodayTask(_ context.Context, token string) (*dto.AssignmentResponse, error) {
	if err := f.check(token); err != nil {
		return nil, err
	}
	if f.assignment == nil {
		return nil, &apiclient.Error{Status: 404, Code: "NOT_FOUND"}
	}
	return f.assignment, nil
}

func (f *fakeBackend) CompleteTask(_ context.Context, token string, id uuid.UUID, answer *string) (*dto.AssignmentResponse, error) {
	if err := f.check(token); err != nil {
		return nil, err
	}
	f.completed = append(f.completed, answer)
	f.assignment.Status = model.StatusCompleted
	return f.assignment, nil
}

func (f *fakeBackend) Progress(_ context.Context, token string) (*model.Progress, error) {
	if err := f.check(token); err != nil {
		return nil, err
	}
	return &model.Progress{TotalTasks: 3, CompletedTasks: 2, CompletionRate: 66.67, StreakDays: 2, LongestStreak: 2}, nil
}

type fakeBotAPI struct {
	messages []string
	deleted  []int
}

func (f *fakeBotAPI) SendMessage(_ int64, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeBotAPI) SendMessageWithMarkup(chatID int64, text string, _ any) error {
	return f.SendMessage(chatID, text)
}

func (f *fakeBotAPI) EditMessageWithMarkup(int64, int, string, *tgbotapi.InlineKeyboardMarkup) error {
	return nil
}

func (f *fakeBotAPI) DeleteMessage(_ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeBotAPI) AnswerCallback(string, string) error         { return nil }
func (f *fakeBotAPI) SetBotCommands([]tgbotapi.BotCommand) error { return nil }

func (f *fakeBotAPI) last() string {
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

type testBot struct {
	h        *Handlers
	api      *fakeBackend
	bot      *fakeBotAPI
	sessions *conversation.Manager
}

func newTestBot() *testBot {
	api := newFakeBackend()
	bot := &fakeBotAPI{}
	sessions := conversation.NewManager(conversation.NewMemoryStore(time.Hour), 15*time.Minute, zap.NewNop())
	return &testBot{
		h:        New(api, sessions, bot, zap.NewNop()),
		api:      api,
		bot:      bot,
		sessions: sessions,
	}
}

func (b *testBot) text(id int, text string) {
	b.h.Text(context.Background(), &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: testTelegramID},
		Chat:      &tgbotapi.Chat{ID: testChatID},
		Text:      text,
	})
}

func (b *testBot) state(t *testing.T) *conversation.Session {
	t.Helper()
	session, err := b.sessions.Get(context.Background(), testChatID)
	require.NoError(t, err)
	return session
}

func (b *testBot) start() {
	b.h.Start(context.Background(), &tgbotapi.Message{
		From: &tgbotapi.User{ID: testTelegramID},
		Chat: &tgbotapi.Chat{ID: testChatID},
	})
}

func TestRegistrationFlow(t *testing.T) {
	b := newTestBot()

	b.start()
	assert.Equal(t, conversation.StateRegistrationName, b.state(t).State)
	assert.Equal(t, formatter.AskName, b.bot.last())

	b.text(1, "А")
	assert.Equal(t, formatter.InvalidName, b.bot.last())
	assert.Equal(t, conversation.StateRegistrationName, b.state(t).State)

	b.text(2, "Анна")
	assert.Equal(t, conversation.StateRegistrationEmail, b.state(t).State)

	b.text(3, "anna-at-mail")
	assert.Equal(t, formatter.InvalidEmail, b.bot.last())

	b.text(4, "Anna@Mail.ru")
	assert.Equal(t, conversation.StateRegistrationPassword, b.state(t).State)

	b.text(5, "short")
	assert.Equal(t, formatter.InvalidPassword, b.bot.last())
	assert.Contains(t, b.bot.deleted, 5, "password message is deleted")

	b.text(6, "long-enough-password")
	assert.Contains(t, b.bot.deleted, 6)
	require.NotNil(t, b.api.registerReq)
	assert.Equal(t, "Анна", b.api.registerReq.Name)
	assert.Equal(t, "anna@mail.ru", b.api.registerReq.Email)
	assert.Equal(t, testTelegramID, *b.api.registerReq.TelegramID)

	session := b.state(t)
	assert.True(t, session.IsIdle())
	assert.True(t, session.Authorized())
	assert.Contains(t, b.bot.last(), "anna@mail.ru")

	b.start()
	assert.Equal(t, formatter.WelcomeExistingUser, b.bot.last())
}

func TestDoneFlow(t *testing.T) {
	b := newTestBot()
	b.api.registered[testTelegramID] = true
	assignmentID := uuid.New()
	b.api.assignment = &dto.AssignmentResponse{
		ID:     assignmentID,
		Status: model.StatusPending,
		Task:   &dto.TaskResponse{Title: "Дыхание", Description: "4-7-8"},
	}
	ctx := context.Background()

	b.h.Today(ctx, testChatID, testTelegramID)
	assert.Contains(t, b.bot.last(), "Дыхание")

	b.h.Done(ctx, testChatID, testTelegramID)
	session := b.state(t)
	assert.Equal(t, conversation.StateAwaitingAnswer, session.State)
	assert.Equal(t, assignmentID, *session.AssignmentID)

	b.text(10, "Стало спокойнее")
	require.Len(t, b.api.completed, 1)
	assert.Equal(t, "Стало спокойнее", *b.api.completed[0])
	assert.Equal(t, formatter.TaskCompleted, b.bot.last())
	assert.True(t, b.state(t).IsIdle())

	b.h.Done(ctx, testChatID, testTelegramID)
	assert.Equal(t, formatter.TaskAlreadyCompleted, b.bot.last())
}

func TestSkipAndCancel(t *testing.T) {
	b := newTestBot()
	b.api.registered[testTelegramID] = true
	b.api.assignment = &dto.AssignmentResponse{ID: uuid.New(), Status: model.StatusPending, Task: &dto.TaskResponse{Title: "x"}}
	ctx := context.Background()

	b.h.Skip(ctx, testChatID, testTelegramID)
	assert.Equal(t, formatter.NothingToSkip, b.bot.last())

	b.h.Cancel(ctx, testChatID)
	assert.Equal(t, formatter.NothingToCancel, b.bot.last())

	b.h.Done(ctx, testChatID, testTelegramID)
	b.h.Cancel(ctx, testChatID)
	assert.Equal(t, formatter.Cancelled, b.bot.last())
	assert.True(t, b.state(t).IsIdle())

	b.h.Done(ctx, testChatID, testTelegramID)
	b.h.Skip(ctx, testChatID, testTelegramID)
	require.Len(t, b.api.completed, 1)
	assert.Nil(t, b.api.completed[0])
	assert.Equal(t, formatter.TaskCompleted, b.bot.last())
}

func TestWithAuth_RefreshesExpiredToken(t *testing.T) {
	b := newTestBot()
	b.api.registered[testTelegramID] = true
	ctx := context.Background()

	b.h.Progress(ctx, testChatID, testTelegramID)
	assert.Contains(t, b.bot.last(), "2 из 3")
	assert.Equal(t, 1, b.api.loginCalls)

	b.api.rejectToken = b.state(t).AccessToken
	b.h.Progress(ctx, testChatID, testTelegramID)
	assert.Contains(t, b.bot.last(), "2 из 3")
	assert.Equal(t, 1, b.api.refreshes)
	assert.Equal(t, 1, b.api.loginCalls, "refresh succeeded, no relogin")
	assert.NotEqual(t, b.api.rejectToken, b.state(t).AccessToken)
}

func TestNotRegistered(t *testing.T) {
	b := newTestBot()

	b.h.Today(context.Background(), testChatID, testTelegramID)
	assert.Equal(t, formatter.ErrorNoToken, b.bot.last())
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"a@b.ru", true},
		{"name.surname@mail.example.com", true},
		{"a@b", false},
		{"@b.ru", false},
		{"a@.ru", false},
		{"a@b.", false},
		{"a@b@c.ru", false},
		{"plain", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, looksLikeEmail(tt.value), tt.value)
	}
}

func TestCallback(t *testing.T) {
	b := newTestBot()
	b.api.registered[testTelegramID] = true
	assignmentID := uuid.New()
	b.api.assignment = &dto.AssignmentResponse{ID: assignmentID, Status: model.StatusPending, Task: &dto.TaskResponse{Title: "Прогулка"}}

	callback := func(data string) {
		b.h.Callback(context.Background(), &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: testTelegramID},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: testChatID}},
			Data:    data,
		})
	}

	t.Run("Детали устаревшего задания", func(t *testing.T) {
		callback("task_details_" + uuid.NewString())
		assert.Equal(t, formatter.NoTaskToday, b.bot.last())
	})

	t.Run("Детали текущего задания", func(t *testing.T) {
		callback("task_details_" + assignmentID.String())
		assert.Contains(t, b.bot.last(), "Прогулка")
	})

	t.Run("Кнопка выполнения", func(t *testing.T) {
		callback("complete_task_" + assignmentID.String())
		assert.Equal(t, formatter.AskTaskAnswer, b.bot.last())
		assert.Equal(t, conversation.StateAwaitingAnswer, b.state(t).State)
	})

	t.Run("Неизвестная кнопка", func(t *testing.T) {
		callback("bogus")
		assert.Equal(t, formatter.UnknownCallback, b.bot.last())
	})
}
