package service

import (
	"context"
	"fmt"
	"sync"

	"dailymind/internal/config"
	"dailymind/internal/model"

	"go.uber.org/zap"
)

// SettingChangeHook вызывается после сохранения настройки
type SettingChangeHook func(ctx context.Context, key, value string) error

type settingSpec struct {
	description string
	valid       func(string) bool
}

var knownSettings = map[string]settingSpec{
	config.KeyMorningTaskTime: {
		description: "Время утренней рассылки заданий (HH:MM)",
		valid:       config.IsValidClock,
	},
	config.KeyEveningReminderTime: {
		description: "Время вечернего напоминания (HH:MM)",
		valid:       config.IsValidClock,
	},
	config.KeySchedulerTimezone: {
		description: "Часовой пояс расписания (IANA)",
		valid:       config.IsValidTimezone,
	},
}

// SettingsService хранит настройки, изменяемые во время работы
type SettingsService struct {
	repo   model.SettingRepository
	logger *zap.Logger

	mu    sync.RWMutex
	hooks []SettingChangeHook
}

// NewSettingsService создает новый сервис настроек
func NewSettingsService(repo model.SettingRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: logger,
	}
}

// OnChange регистрирует обработчик изменения настроек
func (s *SettingsService) OnChange(hook SettingChangeHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Get возвращает значение настройки
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// GetAll возвращает все сохраненные настройки
func (s *SettingsService) GetAll(ctx context.Context) ([]model.Setting, error) {
	return s.repo.GetAll(ctx)
}

// Set проверяет и сохраняет настройку, затем уведомляет обработчики
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	spec, ok := knownSettings[key]
	if !ok {
		return model.ValidationError{Field: "key", Message: fmt.Sprintf("unknown setting %q", key)}
	}
	if !spec.valid(value) {
		return model.ValidationError{Field: "value", Message: fmt.Sprintf("invalid value for %s", key)}
	}

	if err := s.repo.Set(ctx, key, value, spec.description); err != nil {
		return err
	}

	s.mu.RLock()
	hooks := append([]SettingChangeHook(nil), s.hooks...)
	s.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, key, value); err != nil {
			s.logger.Error("Failed to apply setting change",
				zap.String("key", key),
				zap.String("value", value),
				zap.Error(err))
			return fmt.Errorf("setting saved but not applied: %w", err)
		}
	}

	return nil
}

// IsKnownSetting проверяет, можно ли менять настройку
func IsKnownSetting(key string) bool {
	_, ok := knownSettings[key]
	return ok
}
