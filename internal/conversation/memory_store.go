package conversation

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore хранит сессии в памяти процесса. Используется, когда Redis не настроен.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore создает хранилище в памяти
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load читает сессию
func (s *MemoryStore) Load(_ context.Context, chatID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[chatID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.sessions, chatID)
		return nil, ErrSessionNotFound
	}

	session := entry.session
	return &session, nil
}

// Save сохраняет копию сессии
func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ChatID] = memoryEntry{
		session:   *session,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete удаляет сессию
func (s *MemoryStore) Delete(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}
