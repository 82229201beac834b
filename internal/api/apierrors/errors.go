// Package apierrors переводит доменные ошибки в JSON ответы API.
package apierrors

import (
	"errors"
	"net/http"

	"dailymind/internal/model"

	"github.com/gin-gonic/gin"
)

// Коды ошибок
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInactive     = "INACTIVE_USER"
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

// APIError стандартный ответ с ошибкой
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error реализует интерфейс error
func (e *APIError) Error() string {
	return e.Message
}

// New создает APIError
func New(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Abort отправляет ошибку и прерывает цепочку обработчиков
func Abort(c *gin.Context, status int, apiErr *APIError) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, apiErr)
}

// Unauthorized отправляет 401
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Could not validate credentials"
	}
	Abort(c, http.StatusUnauthorized, New(CodeUnauthorized, message))
}

// Forbidden отправляет 403
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Not enough permissions"
	}
	Abort(c, http.StatusForbidden, New(CodeForbidden, message))
}

// NotFound отправляет 404
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Abort(c, http.StatusNotFound, New(CodeNotFound, message))
}

// BadRequest отправляет 400
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Abort(c, http.StatusBadRequest, New(CodeInvalidInput, message))
}

// InvalidInput отправляет 400 с подробностями
func InvalidInput(c *gin.Context, message string, details any) {
	Abort(c, http.StatusBadRequest, &APIError{Code: CodeInvalidInput, Message: message, Details: details})
}

// TooManyRequests отправляет 429
func TooManyRequests(c *gin.Context) {
	Abort(c, http.StatusTooManyRequests, New(CodeRateLimited, "Too many requests"))
}

// Respond переводит доменную ошибку в ответ. Конфликт отдается как 409.
func Respond(c *gin.Context, err error) {
	respond(c, err, http.StatusConflict)
}

// RespondInput используется там, где конфликт означает неверные входные данные
// (регистрация, изменение профиля). Конфликт отдается как 400.
func RespondInput(c *gin.Context, err error) {
	respond(c, err, http.StatusBadRequest)
}

func respond(c *gin.Context, err error, conflictStatus int) {
	status, apiErr := classify(err, conflictStatus)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	Abort(c, status, apiErr)
}

// classify возвращает код ответа и тело для ошибки
func classify(err error, conflictStatus int) (int, *APIError) {
	var verr model.ValidationError
	var verrs model.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, &APIError{Code: CodeInvalidInput, Message: "Validation failed", Details: []model.ValidationError(verrs)}
	case errors.As(err, &verr):
		return http.StatusBadRequest, &APIError{Code: CodeInvalidInput, Message: verr.Message, Details: []model.ValidationError{verr}}
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, New(CodeInvalidInput, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, New(CodeUnauthorized, "Could not validate credentials")
	case errors.Is(err, model.ErrInactive):
		return http.StatusForbidden, New(CodeInactive, "User is inactive")
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, New(CodeForbidden, "Not enough permissions")
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, New(CodeNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		return conflictStatus, New(CodeConflict, err.Error())
	default:
		return http.StatusInternalServerError, New(CodeInternal, "Internal server error")
	}
}
