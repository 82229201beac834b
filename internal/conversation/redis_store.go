package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dailymind:session:"

// RedisStore хранит сессии в Redis в виде JSON с TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создает хранилище по URL вида redis://host:6379/0
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedisStoreWithClient(redis.NewClient(opts), ttl), nil
}

// NewRedisStoreWithClient создает хранилище поверх готового клиента
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

// Load читает сессию
func (s *RedisStore) Load(ctx context.Context, chatID int64) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Save сохраняет сессию и продлевает TTL
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.ChatID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete удаляет сессию
func (s *RedisStore) Delete(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}

// Ping проверяет доступность Redis
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close закрывает соединения
func (s *RedisStore) Close() error {
	return s.client.Close()
}
