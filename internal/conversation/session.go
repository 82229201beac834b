// Package conversation хранит состояние диалога бота с пользователем.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// State состояние диалога
type State string

const (
	StateIdle                 State = "idle"
	StateRegistrationName     State = "registration_name"
	StateRegistrationEmail    State = "registration_email"
	StateRegistrationPassword State = "registration_password"
	StateAwaitingAnswer       State = "awaiting_answer"
)

// ErrSessionNotFound сессия отсутствует в хранилище
var ErrSessionNotFound = errors.New("session not found")

// Session состояние диалога и кэш токенов для одного чата
type Session struct {
	ChatID       int64      `json:"chat_id"`
	State        State      `json:"state"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsIdle сообщает, что диалог не ждет ввода
func (s *Session) IsIdle() bool {
	return s.State == "" || s.State == StateIdle
}

// Authorized сообщает, есть ли у сессии токен доступа
func (s *Session) Authorized() bool {
	return s.AccessToken != ""
}

// SetTokens сохраняет пару токенов
func (s *Session) SetTokens(access, refresh string) {
	s.AccessToken = access
	s.RefreshToken = refresh
}

// ClearTokens удаляет токены
func (s *Session) ClearTokens() {
	s.AccessToken = ""
	s.RefreshToken = ""
}

// reset возвращает диалог в idle, токены сохраняются
func (s *Session) reset() {
	s.State = StateIdle
	s.Name = ""
	s.Email = ""
	s.AssignmentID = nil
}

// Store хранилище сессий
type Store interface {
	Load(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, chatID int64) error
}
