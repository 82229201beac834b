// Package config содержит утилиты для загрузки конфигурации
package config

import (
	"context"
	"time"
	// База часовых поясов встроена, чтобы SCHEDULER_TIMEZONE работал в минимальных образах
	_ "time/tzdata"

	"go.uber.org/zap"
)

// Ключи настроек, которые администратор может менять во время работы
const (
	KeyMorningTaskTime     = "MORNING_TASK_TIME"
	KeyEveningReminderTime = "EVENING_REMINDER_TIME"
	KeySchedulerTimezone   = "SCHEDULER_TIMEZONE"
)

// SettingsReader определяет интерфейс чтения настроек из базы данных
type SettingsReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Loader накладывает сохраненные в базе настройки на значения из окружения
type Loader struct {
	settings SettingsReader
	logger   *zap.Logger
}

// NewLoader создает новый загрузчик конфигурации
func NewLoader(settings SettingsReader, logger *zap.Logger) *Loader {
	return &Loader{
		settings: settings,
		logger:   logger,
	}
}

// LoadValue возвращает значение из базы, если оно есть и проходит проверку, иначе current
func (l *Loader) LoadValue(ctx context.Context, current, key string, valid func(string) bool) string {
	dbValue, err := l.settings.Get(ctx, key)
	if err != nil || dbValue == "" {
		l.logger.Debug("Setting not found in database, keeping environment value",
			zap.String("key", key),
			zap.String("value", current),
			zap.Error(err))
		return current
	}

	if valid != nil && !valid(dbValue) {
		l.logger.Warn("Ignoring invalid setting from database",
			zap.String("key", key),
			zap.String("value", dbValue))
		return current
	}

	if dbValue != current {
		l.logger.Info("Loaded "+key+" from database", zap.String("value", dbValue))
	}
	return dbValue
}

// LoadValueWithSetter загружает значение и устанавливает его через setter
func (l *Loader) LoadValueWithSetter(ctx context.Context, current, key string, valid func(string) bool, setter func(string)) {
	setter(l.LoadValue(ctx, current, key, valid))
}

// LoadScheduleFromDB обновляет расписание рассылок значениями из базы данных
func (l *Loader) LoadScheduleFromDB(ctx context.Context, cfg *Config) {
	l.LoadValueWithSetter(ctx, cfg.Schedule.MorningTaskTime, KeyMorningTaskTime, IsValidClock, func(value string) {
		cfg.Schedule.MorningTaskTime = value
	})

	l.LoadValueWithSetter(ctx, cfg.Schedule.EveningReminderTime, KeyEveningReminderTime, IsValidClock, func(value string) {
		cfg.Schedule.EveningReminderTime = value
	})

	l.LoadValueWithSetter(ctx, cfg.Schedule.Timezone, KeySchedulerTimezone, IsValidTimezone, func(value string) {
		cfg.Schedule.Timezone = value
	})
}

// IsValidClock проверяет формат HH:MM
func IsValidClock(value string) bool {
	_, _, err := ParseClock(value)
	return err == nil
}

// IsValidTimezone проверяет имя часового пояса IANA
func IsValidTimezone(value string) bool {
	_, err := time.LoadLocation(value)
	return err == nil
}
