// Package apiclient содержит HTTP клиент API, которым пользуется бот.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dailymind/internal/api/dto"
	"dailymind/internal/config"
	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxErrorBody ограничивает чтение тела ответа с ошибкой
const maxErrorBody = 64 << 10

// Client клиент API
type Client struct {
	baseURL   string
	botSecret string
	client    *http.Client
	retry     config.RetryConfig
	logger    *zap.Logger
}

// NewClient создает клиент API. baseURL включает префикс версии, например http://backend:8000/api/v1.
func NewClient(baseURL, botSecret string, httpCfg config.HTTPClientConfig, retry config.RetryConfig, logger *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          httpCfg.MaxIdleConns,
		MaxIdleConnsPerHost:   httpCfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       httpCfg.IdleConnTimeout,
		TLSHandshakeTimeout:   httpCfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: httpCfg.ResponseHeaderTimeout,
		DisableKeepAlives:     httpCfg.DisableKeepAlives,
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		botSecret: botSecret,
		client: &http.Client{
			Transport: transport,
			Timeout:   httpCfg.Timeout,
		},
		retry:  retry,
		logger: logger,
	}
}

// Register регистрирует пользователя
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var resp dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TelegramLogin получает токены по Telegram ID
func (c *Client) TelegramLogin(ctx context.Context, telegramID int64) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/telegram", "", dto.TelegramLoginRequest{TelegramID: telegramID}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh обновляет пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", dto.RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me возвращает текущего пользователя
func (c *Client) Me(ctx context.Context, token string) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TodayTask возвращает задание на сегодня, назначая его при необходимости
func (c *Client) TodayTask(ctx context.Context, token string) (*dto.AssignmentResponse, error) {
	var resp dto.AssignmentResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/today", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompleteTask отмечает назначение выполненным
func (c *Client) CompleteTask(ctx context.Context, token string, assignmentID uuid.UUID, answer *string) (*dto.AssignmentResponse, error) {
	var resp dto.AssignmentResponse
	path := "/tasks/" + assignmentID.String() + "/complete"
	if err := c.do(ctx, http.MethodPost, path, token, dto.CompleteTaskRequest{AnswerText: answer}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Progress возвращает статистику пользователя
func (c *Client) Progress(ctx context.Context, token string) (*model.Progress, error) {
	var resp model.Progress
	if err := c.do(ctx, http.MethodGet, "/users/me/progress", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do выполняет запрос с повторами и разбирает ответ в out
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	return WithRetry(ctx, c.logger, c.retry, retryable, func() error {
		return c.send(ctx, method, path, token, payload, out)
	})
}

func (c *Client) send(ctx context.Context, method, path, token string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.botSecret != "" {
		req.Header.Set("X-Bot-Secret", c.botSecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}

		c.logger.Debug("API request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
