package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dailymind/internal/api/apierrors"
	"dailymind/internal/api/handlers"
	"dailymind/internal/api/middleware"
	"dailymind/internal/config"
	"dailymind/internal/model"
	"dailymind/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBotSecret = "bot-secret"

var (
	regularUser = &model.User{ID: uuid.New(), Name: "Анна", Role: model.RoleUser, IsActive: true}
	adminUser   = &model.User{ID: uuid.New(), Name: "Админ", Role: model.RoleAdmin, IsActive: true}
)

type stubAuth struct {
	handlers.AuthService
	registerErr error
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	switch token {
	case "user-token":
		return regularUser, nil
	case "admin-token":
		return adminUser, nil
	case "inactive-token":
		return nil, model.ErrInactive
	}
	return nil, fmt.Errorf("bad token: %w", model.ErrUnauthorized)
}

func (s *stubAuth) TelegramLogin(_ context.Context, telegramID int64) (*service.TokenPair, error) {
	if telegramID != 42 {
		return nil, model.ErrNotFound
	}
	return &service.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}, nil
}

func (s *stubAuth) Register(_ context.Context, in service.RegisterInput) (*model.User, *service.TokenPair, error) {
	if s.registerErr != nil {
		return nil, nil, s.registerErr
	}
	return &model.User{ID: uuid.New(), Name: in.Name, Role: model.RoleUser, IsActive: true},
		&service.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"}, nil
}

type stubUsers struct {
	handlers.UserService
	updateErr error
}

func (s *stubUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if id == regularUser.ID {
		return regularUser, nil
	}
	return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
}

func (s *stubUsers) UpdateProfile(context.Context, uuid.UUID, service.ProfilePatch) (*model.User, error) {
	return nil, s.updateErr
}

type stubEngine struct {
	handlers.AssignmentEngine
	lastDate    *time.Time
	lastFilter  model.AssignmentFilter
	lastAnswer  *string
	completeErr error
}

func (s *stubEngine) Today() time.Time {
	return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (s *stubEngine) CompleteTask(_ context.Context, _ uuid.UUID, _ uuid.UUID, answer *string) (*model.Assignment, error) {
	s.lastAnswer = answer
	return nil, s.completeErr
}

func (s *stubEngine) GetTaskHistory(_ context.Context, _ uuid.UUID, filter model.AssignmentFilter) ([]model.Assignment, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *stubEngine) CreateDailyAssignment(_ context.Context, userID, taskID uuid.UUID, date *time.Time) (*model.Assignment, error) {
	s.lastDate = date
	return &model.Assignment{ID: uuid.New(), UserID: userID, TaskID: taskID, AssignedDate: date, Status: model.StatusPending}, nil
}

type stubScheduler struct {
	handlers.SchedulerService
}

func (s *stubScheduler) RunNow(_ context.Context, name string) error {
	switch name {
	case "morning_tasks":
		return nil
	case "evening_reminders":
		return fmt.Errorf("1 of 1 deliveries failed")
	}
	return fmt.Errorf("job %s: %w", name, model.ErrNotFound)
}

type testEnv struct {
	router *gin.Engine
	auth   *stubAuth
	users  *stubUsers
	engine *stubEngine
}

func newTestEnv(limiter *middleware.IPRateLimiter) *testEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:  config.AppConfig{Name: "dailymind"},
		HTTP: config.HTTPConfig{APIPrefix: "/api/v1", CORSOrigins: []string{"*"}},
		Auth: config.AuthConfig{BotSecret: testBotSecret},
	}
	env := &testEnv{auth: &stubAuth{}, users: &stubUsers{}, engine: &stubEngine{}}
	env.router = NewRouter(cfg, handlers.Deps{
		Auth:      env.auth,
		Users:     env.users,
		Engine:    env.engine,
		Scheduler: &stubScheduler{},
	}, limiter, zap.NewNop())
	return env
}

func (e *testEnv) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestRouter_AccessControl(t *testing.T) {
	env := newTestEnv(nil)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		expected int
		code     string
	}{
		{name: "Без токена", method: http.MethodGet, path: "/api/v1/users/me", expected: http.StatusUnauthorized, code: apierrors.CodeUnauthorized},
		{name: "Неверный токен", method: http.MethodGet, path: "/api/v1/users/me", token: "garbage", expected: http.StatusUnauthorized, code: apierrors.CodeUnauthorized},
		{name: "Неактивный пользователь", method: http.MethodGet, path: "/api/v1/users/me", token: "inactive-token", expected: http.StatusForbidden, code: apierrors.CodeInactive},
		{name: "Профиль", method: http.MethodGet, path: "/api/v1/users/me", token: "user-token", expected: http.StatusOK},
		{name: "Админка для пользователя", method: http.MethodGet, path: "/api/v1/admin/users/" + regularUser.ID.String(), token: "user-token", expected: http.StatusForbidden, code: apierrors.CodeForbidden},
		{name: "Админка для администратора", method: http.MethodGet, path: "/api/v1/admin/users/" + regularUser.ID.String(), token: "admin-token", expected: http.StatusOK},
		{name: "Неизвестный пользователь", method: http.MethodGet, path: "/api/v1/admin/users/" + uuid.NewString(), token: "admin-token", expected: http.StatusNotFound, code: apierrors.CodeNotFound},
		{name: "Невалидный UUID", method: http.MethodGet, path: "/api/v1/admin/users/abc", token: "admin-token", expected: http.StatusBadRequest, code: apierrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.expected, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Code)
			}
			if tt.expected == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRouter_TelegramLogin(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/api/v1/auth/telegram", "", `{"telegram_id":42}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/telegram", "", `{"telegram_id":42}`, "X-Bot-Secret", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/telegram", "", `{"telegram_id":42}`, "X-Bot-Secret", testBotSecret)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token_type":"bearer"`)

	w = env.do(http.MethodPost, "/api/v1/auth/telegram", "", `{"telegram_id":7}`, "X-Bot-Secret", testBotSecret)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ConflictMapping(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/api/v1/auth/register", "", `{"name":"Анна","email":"a@b.ru","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"access_token":"a"`)

	env.auth.registerErr = fmt.Errorf("email taken: %w", model.ErrConflict)
	w = env.do(http.MethodPost, "/api/v1/auth/register", "", `{"name":"Анна","email":"a@b.ru","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.CodeConflict, decodeError(t, w).Code)

	env.users.updateErr = fmt.Errorf("telegram taken: %w", model.ErrConflict)
	w = env.do(http.MethodPatch, "/api/v1/users/me", "user-token", `{"telegram_id":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.engine.completeErr = fmt.Errorf("foreign assignment: %w", model.ErrForbidden)
	w = env.do(http.MethodPost, "/api/v1/tasks/"+uuid.NewString()+"/complete", "user-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.engine.completeErr = fmt.Errorf("queued: %w", model.ErrConflict)
	w = env.do(http.MethodPost, "/api/v1/tasks/"+uuid.NewString()+"/complete", "user-token", `{"answer_text":"ok"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_HistoryLimits(t *testing.T) {
	env := newTestEnv(nil)

	tests := []struct {
		query    string
		expected int
		limit    int
	}{
		{query: "", expected: http.StatusOK, limit: 10},
		{query: "?limit=100", expected: http.StatusOK, limit: 100},
		{query: "?limit=0", expected: http.StatusBadRequest},
		{query: "?limit=101", expected: http.StatusBadRequest},
		{query: "?status=lost", expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env.engine.lastFilter = model.AssignmentFilter{}
			w := env.do(http.MethodGet, "/api/v1/tasks/history"+tt.query, "user-token", "")
			assert.Equal(t, tt.expected, w.Code)
			if tt.expected == http.StatusOK {
				assert.Equal(t, tt.limit, env.engine.lastFilter.Limit)
				assert.Equal(t, "[]", w.Body.String())
			}
		})
	}
}

func TestRouter_AssignTask(t *testing.T) {
	env := newTestEnv(nil)
	base := "/api/v1/admin/users/" + regularUser.ID.String() + "/assign-task?task_id=" + uuid.NewString()

	w := env.do(http.MethodPost, base, "admin-token", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, env.engine.lastDate)
	assert.Equal(t, "2024-03-10", env.engine.lastDate.Format(model.DateLayout))

	w = env.do(http.MethodPost, base+"&assigned_date=2024-04-01", "admin-token", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"assigned_date":"2024-04-01"`)

	w = env.do(http.MethodPost, base+"&queue=true", "admin-token", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, env.engine.lastDate)
	assert.Contains(t, w.Body.String(), `"assigned_date":null`)

	w = env.do(http.MethodPost, base+"&assigned_date=01.04.2024", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/v1/admin/users/"+regularUser.ID.String()+"/assign-task", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RunJob(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/api/v1/admin/scheduler/jobs/morning_tasks/run", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = env.do(http.MethodPost, "/api/v1/admin/scheduler/jobs/evening_reminders/run", "admin-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "deliveries failed")

	w = env.do(http.MethodPost, "/api/v1/admin/scheduler/jobs/unknown/run", "admin-token", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	env := newTestEnv(middleware.NewIPRateLimiter(1, 2, zap.NewNop()))

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/", "", "").Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/", "", "").Code)

	w := env.do(http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apierrors.CodeRateLimited, decodeError(t, w).Code)
}

func TestRouter_RequestID(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodGet, "/", "", "")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = env.do(http.MethodGet, "/", "", "", middleware.RequestIDHeader, "req-1")
	assert.Equal(t, "req-1", w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_CompleteTaskBody(t *testing.T) {
	env := newTestEnv(nil)
	path := "/api/v1/tasks/" + uuid.NewString() + "/complete"

	tests := []struct {
		name     string
		body     string
		chunked  bool
		expected int
		answer   *string
	}{
		{name: "Без тела", expected: http.StatusOK},
		{name: "С ответом", body: `{"answer_text":"спокойно"}`, expected: http.StatusOK, answer: ptr("спокойно")},
		{name: "Chunked с ответом", body: `{"answer_text":"calm"}`, chunked: true, expected: http.StatusOK, answer: ptr("calm")},
		{name: "Пустое chunked тело", chunked: true, expected: http.StatusOK},
		{name: "Битый JSON", body: `{"answer_text":`, chunked: true, expected: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.engine.lastAnswer = nil

			var req *http.Request
			if tt.body != "" || tt.chunked {
				req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(http.MethodPost, path, nil)
			}
			if tt.chunked {
				req.ContentLength = -1
				req.TransferEncoding = []string{"chunked"}
			}
			req.Header.Set("Authorization", "Bearer user-token")

			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)

			require.Equal(t, tt.expected, w.Code, w.Body.String())
			if tt.expected == http.StatusOK {
				assert.Equal(t, tt.answer, env.engine.lastAnswer)
			}
		})
	}
}

func ptr(s string) *string {
	return &s
}
