package model

import "errors"

// Доменные ошибки, которые API переводит в коды ответа
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrInactive     = errors.New("user is inactive")
)
