// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dailymind/internal/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobTimeout ограничивает время одного запуска задачи
const JobTimeout = 30 * time.Minute

// JobStatus состояние задачи планировщика
type JobStatus struct {
	Name           string        `json:"name"`
	JobType        model.JobType `json:"job_type"`
	CronExpression string        `json:"cron_expression"`
	IsActive       bool          `json:"is_active"`
	Scheduled      bool          `json:"scheduled"`
	NextRun        *time.Time    `json:"next_run"`
	LastRun        *time.Time    `json:"last_run"`
	RunCount       int           `json:"run_count"`
	SuccessCount   int           `json:"success_count"`
	ErrorCount     int           `json:"error_count"`
	LastError      string        `json:"last_error,omitempty"`
}

// SchedulerStatus состояние планировщика
type SchedulerStatus struct {
	Running  bool        `json:"running"`
	Timezone string      `json:"timezone"`
	Jobs     []JobStatus `json:"jobs"`
}

// Scheduler управляет выполнением рассылок по расписанию
type Scheduler struct {
	jobService *JobService
	executors  map[model.JobType]JobExecutor
	clock      *Clock
	cron       *cron.Cron
	entries    map[string]cron.EntryID
	logger     *zap.Logger
	mu         sync.RWMutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewScheduler создает новый планировщик
func NewScheduler(jobService *JobService, clock *Clock, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		jobService: jobService,
		executors:  make(map[model.JobType]JobExecutor),
		clock:      clock,
		cron:       cron.New(cron.WithLocation(clock.Location())),
		entries:    make(map[string]cron.EntryID),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// RegisterExecutor регистрирует исполнитель для типа задачи
func (s *Scheduler) RegisterExecutor(jobType model.JobType, executor JobExecutor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[jobType] = executor
	s.logger.Info("Registered job executor", zap.String("job_type", jobType.String()))
}

// Start запускает планировщик
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.logger.Info("Starting scheduler", zap.String("timezone", s.clock.Location().String()))

	count, err := s.loadJobs()
	if err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started successfully", zap.Int("jobs_count", count))
	return nil
}

// Stop останавливает планировщик и ждет завершения текущих запусков
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	s.logger.Info("Stopping scheduler")

	s.cancel()
	stopCtx := s.cron.Stop()
	s.running = false
	s.mu.Unlock()

	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

// Reload перечитывает задачи из базы данных и часовой пояс
func (s *Scheduler) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Info("Scheduler is not running, reload skipped")
		return nil
	}

	s.logger.Info("Reloading jobs")

	s.cron.Stop()
	s.cron = cron.New(cron.WithLocation(s.clock.Location()))
	s.entries = make(map[string]cron.EntryID)

	count, err := s.loadJobs()
	if err != nil {
		return err
	}

	s.cron.Start()

	s.logger.Info("Jobs reloaded successfully", zap.Int("jobs_count", count))
	return nil
}

// loadJobs добавляет активные задачи в cron. Вызывается под s.mu.
func (s *Scheduler) loadJobs() (int, error) {
	jobs, err := s.jobService.GetActiveJobs(s.ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get active jobs: %w", err)
	}

	s.logger.Info("Loaded active jobs from database", zap.Int("count", len(jobs)))

	added := 0
	for i := range jobs {
		job := jobs[i]
		if err := s.addJobToCron(&job); err != nil {
			s.logger.Error("Failed to add job to cron",
				zap.String("job_name", job.Name),
				zap.String("job_type", job.JobType.String()),
				zap.Error(err))
			continue
		}
		added++
	}
	return added, nil
}

// addJobToCron добавляет задачу в cron
func (s *Scheduler) addJobToCron(job *model.ScheduledJob) error {
	executor, exists := s.executors[job.JobType]
	if !exists {
		return fmt.Errorf("no executor registered for job type: %s", job.JobType)
	}

	id, err := s.cron.AddFunc(job.CronExpression, func() {
		s.executeJob(s.ctx, job, executor)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}
	s.entries[job.Name] = id

	s.logger.Info("Added job to cron",
		zap.String("job_name", job.Name),
		zap.String("cron_expression", job.CronExpression))
	return nil
}

// executeJob выполняет задачу с ограничением по времени
func (s *Scheduler) executeJob(parent context.Context, job *model.ScheduledJob, executor JobExecutor) error {
	s.logger.Info("Executing scheduled job", zap.String("job_name", job.Name))

	ctx, cancel := context.WithTimeout(parent, JobTimeout)
	defer cancel()

	err := s.jobService.ExecuteJob(ctx, job, executor)
	if err != nil {
		s.logger.Error("Scheduled job execution failed",
			zap.String("job_name", job.Name),
			zap.Error(err))
	}
	return err
}

// RunNow немедленно выполняет задачу по имени
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	job, err := s.jobService.GetByName(ctx, name)
	if err != nil {
		return err
	}

	s.mu.RLock()
	executor, exists := s.executors[job.JobType]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no executor registered for job type %s: %w", job.JobType, model.ErrNotFound)
	}

	return s.executeJob(ctx, job, executor)
}

// Status возвращает состояние планировщика и задач
func (s *Scheduler) Status(ctx context.Context) (*SchedulerStatus, error) {
	jobs, err := s.jobService.GetAllJobs(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := &SchedulerStatus{
		Running:  s.running,
		Timezone: s.clock.Location().String(),
		Jobs:     make([]JobStatus, 0, len(jobs)),
	}

	for _, job := range jobs {
		js := JobStatus{
			Name:           job.Name,
			JobType:        job.JobType,
			CronExpression: job.CronExpression,
			IsActive:       job.IsActive,
			NextRun:        job.NextRun,
			LastRun:        job.LastRun,
			RunCount:       job.RunCount,
			SuccessCount:   job.SuccessCount,
			ErrorCount:     job.ErrorCount,
			LastError:      job.LastError,
		}

		if id, ok := s.entries[job.Name]; ok && s.running {
			if entry := s.cron.Entry(id); entry.Valid() {
				next := entry.Next
				js.NextRun = &next
				js.Scheduled = true
			}
		}

		status.Jobs = append(status.Jobs, js)
	}

	return status, nil
}

// IsRunning сообщает, запущен ли планировщик
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
