package repository

import (
	"context"
	"fmt"
	"time"

	"dailymind/internal/model"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// JobRepository реализует интерфейс model.JobRepository
type JobRepository struct {
	db     bun.IDB
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewJobRepository создает новый репозиторий задач планировщика.
// loc задает часовой пояс, в котором интерпретируются cron выражения.
func NewJobRepository(db bun.IDB, loc *time.Location, logger *zap.Logger) model.JobRepository {
	if loc == nil {
		loc = time.Local
	}
	return &JobRepository{
		db:     db,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// GetAll получает все задачи
func (r *JobRepository) GetAll(ctx context.Context) ([]model.ScheduledJob, error) {
	var jobs []model.ScheduledJob
	err := r.db.NewSelect().Model(&jobs).Order("j.name ASC").Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get all jobs", err)
	}
	return jobs, nil
}

// GetActive получает активные задачи
func (r *JobRepository) GetActive(ctx context.Context) ([]model.ScheduledJob, error) {
	var jobs []model.ScheduledJob
	err := r.db.NewSelect().Model(&jobs).Where("j.is_active = ?", true).Order("j.name ASC").Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get active jobs", err)
	}
	return jobs, nil
}

// GetByName получает задачу по имени
func (r *JobRepository) GetByName(ctx context.Context, name string) (*model.ScheduledJob, error) {
	job := new(model.ScheduledJob)
	err := r.db.NewSelect().Model(job).Where("j.name = ?", name).Scan(ctx)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to get job by name %s", name), err)
	}
	return job, nil
}

// Create создает новую задачу, если задачи с таким именем еще нет
func (r *JobRepository) Create(ctx context.Context, job *model.ScheduledJob) error {
	if err := job.Validate(); err != nil {
		return err
	}

	if nextRun, err := r.calculateNextRun(job.CronExpression); err == nil {
		job.NextRun = &nextRun
	}

	_, err := r.db.NewInsert().Model(job).
		ExcludeColumn("created_at", "updated_at").
		On("CONFLICT (name) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return wrapError("failed to create job", err)
	}
	return nil
}

// UpdateCron меняет расписание всех задач заданного типа
func (r *JobRepository) UpdateCron(ctx context.Context, jobType model.JobType, cronExpression string) error {
	nextRun, err := r.calculateNextRun(cronExpression)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	_, err = r.db.NewUpdate().Model((*model.ScheduledJob)(nil)).
		Set("cron_expression = ?", cronExpression).
		Set("next_run = ?", nextRun).
		Set("updated_at = NOW()").
		Where("job_type = ?", jobType).
		Exec(ctx)
	if err != nil {
		return wrapError("failed to update job cron", err)
	}

	r.logger.Info("Job cron updated",
		zap.String("job_type", jobType.String()),
		zap.String("cron", cronExpression))
	return nil
}

// UpdateRunStats обновляет статистику выполнения задачи
func (r *JobRepository) UpdateRunStats(ctx context.Context, id int64, success bool, execErr error) error {
	job := new(model.ScheduledJob)
	if err := r.db.NewSelect().Model(job).Where("j.id = ?", id).Scan(ctx); err != nil {
		return wrapError("failed to get job for next_run calculation", err)
	}

	nextRun, err := r.calculateNextRun(job.CronExpression)
	if err != nil {
		return fmt.Errorf("failed to calculate next run: %w", err)
	}

	var lastError string
	if execErr != nil {
		lastError = execErr.Error()
	}

	query := r.db.NewUpdate().Model((*model.ScheduledJob)(nil)).
		Set("run_count = run_count + 1").
		Set("last_run = NOW()").
		Set("next_run = ?", nextRun).
		Set("last_error = ?", lastError).
		Set("updated_at = NOW()").
		Where("id = ?", id)

	if success {
		query = query.Set("success_count = success_count + 1")
	} else {
		query = query.Set("error_count = error_count + 1")
	}

	if _, err := query.Exec(ctx); err != nil {
		return wrapError("failed to update job run stats", err)
	}

	return nil
}

// calculateNextRun вычисляет следующее время запуска по cron выражению
func (r *JobRepository) calculateNextRun(cronExpression string) (time.Time, error) {
	schedule, err := cron.ParseStandard(cronExpression)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse cron expression %s: %w", cronExpression, err)
	}
	return schedule.Next(r.now().In(r.loc)), nil
}
