package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"dailymind/internal/api/dto"
	"dailymind/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{
		MaxRetries:        2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.URL+"/api/v1/", "secret", config.HTTPClientConfig{
		Timeout:             5 * time.Second,
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
	}, testRetryConfig(), zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_TelegramLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/telegram", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Bot-Secret"))

		var req dto.TelegramLoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(42), req.TelegramID)

		writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"})
	})

	tokens, err := client.TelegramLogin(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "a", tokens.AccessToken)
	assert.Equal(t, "r", tokens.RefreshToken)
}

func TestClient_CompleteTask(t *testing.T) {
	assignmentID := uuid.New()
	answer := "Сделано"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tasks/"+assignmentID.String()+"/complete", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var req dto.CompleteTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.AnswerText)

		writeJSON(w, http.StatusOK, dto.AssignmentResponse{ID: assignmentID, Status: "completed", AnswerText: req.AnswerText})
	})

	resp, err := client.CompleteTask(context.Background(), "token", assignmentID, &answer)
	require.NoError(t, err)
	assert.True(t, resp.IsCompleted())
	assert.Equal(t, answer, *resp.AnswerText)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		expected error
	}{
		{name: "401", status: http.StatusUnauthorized, code: "UNAUTHORIZED", expected: ErrUnauthorized},
		{name: "403", status: http.StatusForbidden, code: "INACTIVE_USER", expected: ErrForbidden},
		{name: "404", status: http.StatusNotFound, code: "NOT_FOUND", expected: ErrNotFound},
		{name: "409", status: http.StatusConflict, code: "CONFLICT", expected: ErrConflict},
		{name: "400 конфликт", status: http.StatusBadRequest, code: "CONFLICT", expected: ErrConflict},
		{name: "400", status: http.StatusBadRequest, code: "INVALID_INPUT", expected: ErrInvalidInput},
		{name: "429", status: http.StatusTooManyRequests, code: "RATE_LIMITED", expected: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.status, map[string]string{"code": tt.code, "message": "nope"})
			})

			_, err := client.Me(context.Background(), "token")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"total_tasks": 4, "completed_tasks": 2, "streak_days": 1})
	})

	progress, err := client.Progress(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, 4, progress.TotalTasks)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.TodayTask(context.Background(), "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(url, "", config.HTTPClientConfig{Timeout: time.Second}, testRetryConfig(), zap.NewNop())
	_, err := client.Me(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithRetry(ctx, zap.NewNop(), testRetryConfig(), retryable, func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
