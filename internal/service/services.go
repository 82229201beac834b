package service

import (
	"context"

	"dailymind/internal/config"
	"dailymind/internal/model"
	"dailymind/internal/storage"

	"go.uber.org/zap"
)

// Services содержит все сервисы приложения
type Services struct {
	Clock           *Clock
	Content         *ContentService
	Users           *UserService
	Auth            *AuthService
	Engine          *AssignmentEngine
	Settings        *SettingsService
	Jobs            *JobService
	Notifier        *Notifier
	Scheduler       *Scheduler
	ScheduleUpdater *ScheduleUpdater
	Seeder          *Seeder
}

// NewServices создает все сервисы
func NewServices(ctx context.Context, db *storage.Postgres, cfg *config.Config, sender Sender, logger *zap.Logger) *Services {
	settingsService := NewSettingsService(db.GetSettingRepository(), logger)

	// Значения расписания из базы имеют приоритет над окружением
	config.NewLoader(settingsService, logger).LoadScheduleFromDB(ctx, cfg)

	clock := NewClock(cfg.Location(), nil)

	userRepo := db.Users()
	taskRepo := db.Tasks()

	contentService := NewContentService(taskRepo, logger)
	userService := NewUserService(userRepo, logger)
	authService := NewAuthService(userRepo, NewTokenManager(cfg.Auth), cfg.Auth.BcryptCost, logger)
	engine := NewAssignmentEngine(db, clock, logger)

	jobService := NewJobService(db.GetJobRepository(clock.Location()), logger)
	notifier := NewNotifier(userService, engine, sender, logger)

	scheduler := NewScheduler(jobService, clock, logger)
	scheduler.RegisterExecutor(model.JobTypeMorningTasks, NewMorningTasksExecutor(notifier, logger))
	scheduler.RegisterExecutor(model.JobTypeEveningReminders, NewEveningRemindersExecutor(notifier, logger))

	updater := NewScheduleUpdater(jobService, scheduler, clock, logger)
	settingsService.OnChange(updater.Apply)

	return &Services{
		Clock:           clock,
		Content:         contentService,
		Users:           userService,
		Auth:            authService,
		Engine:          engine,
		Settings:        settingsService,
		Jobs:            jobService,
		Notifier:        notifier,
		Scheduler:       scheduler,
		ScheduleUpdater: updater,
		Seeder:          NewSeeder(userRepo, taskRepo, jobService, authService, cfg, logger),
	}
}
