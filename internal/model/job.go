package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// JobType представляет тип задачи планировщика
type JobType string

const (
	JobTypeMorningTasks     JobType = "morning_tasks"
	JobTypeEveningReminders JobType = "evening_reminders"
)

// IsValid проверяет валидность типа задачи
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeMorningTasks, JobTypeEveningReminders:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление типа задачи
func (t JobType) String() string {
	return string(t)
}

// MarshalText реализует encoding.TextMarshaler
func (t JobType) MarshalText() ([]byte, error) {
	return []byte(string(t)), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (t *JobType) UnmarshalText(data []byte) error {
	*t = JobType(data)
	return nil
}

// ScheduledJob представляет задачу рассылки в планировщике
type ScheduledJob struct {
	bun.BaseModel `bun:"table:scheduled_jobs,alias:j"`

	ID             int64      `bun:"id,pk,autoincrement" json:"id"`
	Name           string     `bun:"name,unique,notnull" json:"name"`
	Description    string     `bun:"description" json:"description"`
	JobType        JobType    `bun:"job_type,notnull" json:"job_type"`
	CronExpression string     `bun:"cron_expression,notnull" json:"cron_expression"`
	IsActive       bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	LastRun        *time.Time `bun:"last_run" json:"last_run"`
	NextRun        *time.Time `bun:"next_run" json:"next_run"`
	RunCount       int        `bun:"run_count,notnull,default:0" json:"run_count"`
	SuccessCount   int        `bun:"success_count,notnull,default:0" json:"success_count"`
	ErrorCount     int        `bun:"error_count,notnull,default:0" json:"error_count"`
	LastError      string     `bun:"last_error" json:"last_error"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Validate проверяет валидность задачи
func (j *ScheduledJob) Validate() error {
	var errs ValidationErrors

	errs.Add(ValidateRequired("name", j.Name))
	if !j.JobType.IsValid() {
		errs.Add(ValidationError{Field: "job_type", Message: "invalid job type"})
	}
	errs.Add(ValidateRequired("cron_expression", j.CronExpression))

	return errs.Err()
}

// JobRepository определяет интерфейс для работы с задачами планировщика
type JobRepository interface {
	GetAll(ctx context.Context) ([]ScheduledJob, error)
	GetActive(ctx context.Context) ([]ScheduledJob, error)
	GetByName(ctx context.Context, name string) (*ScheduledJob, error)
	Create(ctx context.Context, job *ScheduledJob) error
	UpdateCron(ctx context.Context, jobType JobType, cronExpression string) error
	UpdateRunStats(ctx context.Context, id int64, success bool, execErr error) error
}
