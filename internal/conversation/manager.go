package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager управляет переходами состояний поверх хранилища
type Manager struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewManager создает менеджер диалогов. timeout ограничивает время ожидания ввода.
func NewManager(store Store, timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Get возвращает сессию чата. Отсутствующая или просроченная сессия читается как idle.
func (m *Manager) Get(ctx context.Context, chatID int64) (*Session, error) {
	session, err := m.store.Load(ctx, chatID)
	if errors.Is(err, ErrSessionNotFound) {
		return &Session{ChatID: chatID, State: StateIdle, UpdatedAt: m.now()}, nil
	}
	if err != nil {
		return nil, err
	}

	if !session.IsIdle() && m.timeout > 0 && m.now().Sub(session.UpdatedAt) > m.timeout {
		m.logger.Debug("Conversation timed out",
			zap.Int64("chat_id", chatID),
			zap.String("state", string(session.State)))
		session.reset()
	}

	return session, nil
}

// Save сохраняет сессию, обновляя время последнего изменения
func (m *Manager) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = m.now()
	return m.store.Save(ctx, session)
}

// Transition переводит сессию в новое состояние и сохраняет ее
func (m *Manager) Transition(ctx context.Context, session *Session, state State) error {
	session.State = state
	return m.Save(ctx, session)
}

// AwaitAnswer ждет ответа на задание с указанным назначением
func (m *Manager) AwaitAnswer(ctx context.Context, session *Session, assignmentID uuid.UUID) error {
	session.AssignmentID = &assignmentID
	return m.Transition(ctx, session, StateAwaitingAnswer)
}

// Reset возвращает диалог в idle, сохраняя токены
func (m *Manager) Reset(ctx context.Context, session *Session) error {
	session.reset()
	return m.Save(ctx, session)
}
