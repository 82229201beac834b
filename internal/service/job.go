package service

import (
	"context"
	"fmt"
	"time"

	"dailymind/internal/config"
	"dailymind/internal/model"

	"go.uber.org/zap"
)

// JobExecutor определяет интерфейс для выполнения задач планировщика
type JobExecutor interface {
	Execute(ctx context.Context, job *model.ScheduledJob) error
}

// JobService содержит бизнес-логику задач планировщика
type JobService struct {
	repo   model.JobRepository
	logger *zap.Logger
}

// NewJobService создает новый сервис задач планировщика
func NewJobService(repo model.JobRepository, logger *zap.Logger) *JobService {
	return &JobService{
		repo:   repo,
		logger: logger,
	}
}

// GetAllJobs возвращает все задачи
func (s *JobService) GetAllJobs(ctx context.Context) ([]model.ScheduledJob, error) {
	return s.repo.GetAll(ctx)
}

// GetActiveJobs возвращает активные задачи
func (s *JobService) GetActiveJobs(ctx context.Context) ([]model.ScheduledJob, error) {
	return s.repo.GetActive(ctx)
}

// GetByName возвращает задачу по имени
func (s *JobService) GetByName(ctx context.Context, name string) (*model.ScheduledJob, error) {
	return s.repo.GetByName(ctx, name)
}

// EnsureJob создает задачу, если ее еще нет
func (s *JobService) EnsureJob(ctx context.Context, job *model.ScheduledJob) error {
	return s.repo.Create(ctx, job)
}

// UpdateScheduleTime переводит время HH:MM в cron и сохраняет его для задач заданного типа
func (s *JobService) UpdateScheduleTime(ctx context.Context, jobType model.JobType, clock string) error {
	spec, err := config.CronSpec(clock)
	if err != nil {
		return model.ValidationError{Field: "value", Message: err.Error()}
	}
	return s.repo.UpdateCron(ctx, jobType, spec)
}

// ExecuteJob выполняет задачу и записывает статистику запуска
func (s *JobService) ExecuteJob(ctx context.Context, job *model.ScheduledJob, executor JobExecutor) error {
	s.logger.Info("Executing job",
		zap.String("job_name", job.Name),
		zap.String("job_type", job.JobType.String()))

	startTime := time.Now()
	err := executor.Execute(ctx, job)
	duration := time.Since(startTime)

	success := err == nil
	// Статистику пишем даже при отмененном контексте задачи.
	statsCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if updateErr := s.repo.UpdateRunStats(statsCtx, job.ID, success, err); updateErr != nil {
		s.logger.Error("Failed to update job run stats",
			zap.String("job_name", job.Name),
			zap.Error(updateErr))
	}

	if success {
		s.logger.Info("Job executed successfully",
			zap.String("job_name", job.Name),
			zap.Duration("duration", duration))
	} else {
		s.logger.Error("Job execution failed",
			zap.String("job_name", job.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
	}

	return err
}

// MorningTasksExecutor рассылает утренние задания
type MorningTasksExecutor struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewMorningTasksExecutor создает исполнитель утренней рассылки
func NewMorningTasksExecutor(notifier *Notifier, logger *zap.Logger) *MorningTasksExecutor {
	return &MorningTasksExecutor{
		notifier: notifier,
		logger:   logger,
	}
}

// Execute выполняет утреннюю рассылку
func (e *MorningTasksExecutor) Execute(ctx context.Context, job *model.ScheduledJob) error {
	result, err := e.notifier.SendMorningTasks(ctx)
	if err != nil {
		return err
	}
	return resultError(result)
}

// EveningRemindersExecutor рассылает вечерние напоминания
type EveningRemindersExecutor struct {
	notifier *Notifier
	logger   *zap.Logger
}

// NewEveningRemindersExecutor создает исполнитель вечерних напоминаний
func NewEveningRemindersExecutor(notifier *Notifier, logger *zap.Logger) *EveningRemindersExecutor {
	return &EveningRemindersExecutor{
		notifier: notifier,
		logger:   logger,
	}
}

// Execute выполняет вечернюю рассылку
func (e *EveningRemindersExecutor) Execute(ctx context.Context, job *model.ScheduledJob) error {
	result, err := e.notifier.SendEveningReminders(ctx)
	if err != nil {
		return err
	}
	return resultError(result)
}

// resultError превращает неудачные доставки в ошибку запуска для статистики
func resultError(result DispatchResult) error {
	if result.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d deliveries failed", result.Failed, result.Total)
}
