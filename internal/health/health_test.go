package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var dbErr error
	server := NewServer("0", zap.NewNop())
	server.AddCheck("database", func(ctx context.Context) error { return dbErr })
	handler := server.Handler()

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	tests := []struct {
		name     string
		path     string
		dbErr    error
		expected int
		body     string
	}{
		{name: "Здоров", path: "/health", expected: http.StatusOK, body: `"database":"ok"`},
		{name: "База недоступна", path: "/health", dbErr: errors.New("connection refused"), expected: http.StatusServiceUnavailable, body: "connection refused"},
		{name: "Готов", path: "/ready", expected: http.StatusOK, body: `"ready"`},
		{name: "Не готов", path: "/ready", dbErr: errors.New("down"), expected: http.StatusServiceUnavailable, body: "not ready"},
		{name: "Жив при недоступной базе", path: "/live", dbErr: errors.New("down"), expected: http.StatusOK, body: "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbErr = tt.dbErr
			w := get(tt.path)
			assert.Equal(t, tt.expected, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}
