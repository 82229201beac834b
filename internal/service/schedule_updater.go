package service

import (
	"context"
	"fmt"
	"time"

	"dailymind/internal/config"
	"dailymind/internal/model"

	"go.uber.org/zap"
)

// SchedulerReloader перезагружает расписание
type SchedulerReloader interface {
	Reload() error
}

// ScheduleUpdater применяет изменения настроек расписания к задачам и планировщику
type ScheduleUpdater struct {
	jobService *JobService
	scheduler  SchedulerReloader
	clock      *Clock
	logger     *zap.Logger
}

// NewScheduleUpdater создает новый обработчик изменений расписания
func NewScheduleUpdater(jobService *JobService, scheduler SchedulerReloader, clock *Clock, logger *zap.Logger) *ScheduleUpdater {
	return &ScheduleUpdater{
		jobService: jobService,
		scheduler:  scheduler,
		clock:      clock,
		logger:     logger,
	}
}

// Apply применяет изменение одной настройки. Подходит как SettingChangeHook.
func (u *ScheduleUpdater) Apply(ctx context.Context, key, value string) error {
	switch key {
	case config.KeyMorningTaskTime:
		u.logger.Info("Applying morning task time change", zap.String("value", value))
		if err := u.jobService.UpdateScheduleTime(ctx, model.JobTypeMorningTasks, value); err != nil {
			return fmt.Errorf("failed to update morning tasks cron: %w", err)
		}
	case config.KeyEveningReminderTime:
		u.logger.Info("Applying evening reminder time change", zap.String("value", value))
		if err := u.jobService.UpdateScheduleTime(ctx, model.JobTypeEveningReminders, value); err != nil {
			return fmt.Errorf("failed to update evening reminders cron: %w", err)
		}
	case config.KeySchedulerTimezone:
		u.logger.Info("Applying scheduler timezone change", zap.String("value", value))
		loc, err := time.LoadLocation(value)
		if err != nil {
			return model.ValidationError{Field: "value", Message: err.Error()}
		}
		u.clock.SetLocation(loc)
	default:
		u.logger.Debug("No specific handler for setting key", zap.String("key", key))
		return nil
	}

	return u.scheduler.Reload()
}
