package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AssignmentStatus представляет статус назначения
type AssignmentStatus string

const (
	StatusPending   AssignmentStatus = "pending"
	StatusCompleted AssignmentStatus = "completed"
)

// IsValid проверяет валидность статуса
func (s AssignmentStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Assignment привязывает задание к пользователю на календарный день.
// AssignedDate == nil означает, что назначение стоит в очереди.
type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	ID           uuid.UUID        `bun:"id,pk,type:uuid" json:"id"`
	UserID       uuid.UUID        `bun:"user_id,type:uuid,notnull" json:"user_id"`
	TaskID       uuid.UUID        `bun:"task_id,type:uuid,notnull" json:"task_id"`
	AssignedDate *time.Time       `bun:"assigned_date,type:date" json:"assigned_date"`
	Status       AssignmentStatus `bun:"status,notnull,default:'pending'" json:"status"`
	CompletedAt  *time.Time       `bun:"completed_at" json:"completed_at"`
	AnswerText   *string          `bun:"answer_text" json:"answer_text"`
	CreatedAt    time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	Task *Task `bun:"rel:belongs-to,join:task_id=id" json:"task,omitempty"`
}

// IsQueued проверяет, что назначение еще не привязано к дате
func (a *Assignment) IsQueued() bool {
	return a.AssignedDate == nil
}

// IsCompleted проверяет, выполнено ли назначение
func (a *Assignment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

// Complete переводит назначение в выполненное. Пустой ответ не сохраняется.
func (a *Assignment) Complete(now time.Time, answer *string) {
	a.Status = StatusCompleted
	a.CompletedAt = &now
	if answer != nil && strings.TrimSpace(*answer) != "" {
		text := *answer
		a.AnswerText = &text
	}
}

// AssignmentFilter параметры выборки истории
type AssignmentFilter struct {
	Status AssignmentStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Progress сводка прогресса пользователя
type Progress struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	StreakDays     int     `json:"streak_days"`
	LongestStreak  int     `json:"longest_streak"`
}
