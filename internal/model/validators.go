// Package model содержит валидаторы для моделей.
//
// Группа: BASE - Базовые компоненты
// Содержит: ValidationError, ValidationErrors, валидаторы
package model

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError представляет ошибку валидации
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", ve.Field, ve.Message)
}

// Is позволяет сравнивать ошибку с ErrValidation через errors.Is
func (ve ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors представляет множество ошибок валидации
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Is позволяет сравнивать ошибку с ErrValidation через errors.Is
func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Add добавляет ошибку, если она не nil
func (ve *ValidationErrors) Add(err error) {
	if err == nil {
		return
	}
	if v, ok := err.(ValidationError); ok {
		*ve = append(*ve, v)
		return
	}
	*ve = append(*ve, ValidationError{Field: "", Message: err.Error()})
}

// Err возвращает nil для пустого набора
func (ve ValidationErrors) Err() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateRequired проверяет, что поле не пустое
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidateLength проверяет длину строки в символах
func ValidateLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(strings.TrimSpace(value))
	if length < min {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters", min)}
	}
	if length > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

// ValidateEmail проверяет формат email
func ValidateEmail(field, email string) error {
	if email == "" {
		return ValidationError{Field: field, Message: "is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: field, Message: "invalid email format"}
	}
	return nil
}

// ValidateEnum проверяет, что значение входит в список допустимых
func ValidateEnum(field, value string, allowedValues []string) error {
	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("must be one of: %s", strings.Join(allowedValues, ", "))}
}
