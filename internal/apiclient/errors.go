package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Ошибки API, различаемые ботом
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
	ErrUnavailable  = errors.New("backend unavailable")
)

// Error ответ API с кодом ошибки
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap позволяет сравнивать ошибку с ErrUnauthorized и другими через errors.Is
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		if e.Code == "CONFLICT" {
			return ErrConflict
		}
		return ErrInvalidInput
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}

// retryable сообщает, стоит ли повторять запрос
func retryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrServer)
}
