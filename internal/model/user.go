// Package model содержит модели данных приложения.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole представляет роль пользователя
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid проверяет валидность роли
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление роли
func (r UserRole) String() string {
	return string(r)
}

// User представляет учетную запись
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	TelegramID     *int64    `bun:"telegram_id,unique" json:"telegram_id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Email          *string   `bun:"email,unique" json:"email"`
	HashedPassword *string   `bun:"hashed_password" json:"-"`
	Role           UserRole  `bun:"role,notnull,default:'user'" json:"role"`
	IsActive       bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasChat проверяет, привязан ли к пользователю Telegram
func (u *User) HasChat() bool {
	return u.TelegramID != nil && *u.TelegramID != 0
}

// Validate проверяет валидность пользователя
func (u *User) Validate() error {
	var errs ValidationErrors

	errs.Add(ValidateLength("name", u.Name, 1, 100))

	if u.Email != nil {
		errs.Add(ValidateEmail("email", *u.Email))
	}

	if !u.Role.IsValid() {
		errs.Add(ValidationError{Field: "role", Message: "invalid role"})
	}

	return errs.Err()
}

// UserFilter параметры выборки пользователей
type UserFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}
