package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssignmentEngine выдает ежедневные задания, принимает их выполнение и считает прогресс
type AssignmentEngine struct {
	store    model.Store
	clock    *Clock
	randIntn RandFunc
	logger   *zap.Logger
}

// EngineOption настраивает AssignmentEngine
type EngineOption func(*AssignmentEngine)

// WithRand задает источник случайных чисел
func WithRand(fn RandFunc) EngineOption {
	return func(e *AssignmentEngine) {
		e.randIntn = fn
	}
}

// NewAssignmentEngine создает новый движок назначений
func NewAssignmentEngine(store model.Store, clock *Clock, logger *zap.Logger, opts ...EngineOption) *AssignmentEngine {
	e := &AssignmentEngine{
		store:    store,
		clock:    clock,
		randIntn: rand.IntN,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today возвращает текущий календарный день
func (e *AssignmentEngine) Today() time.Time {
	return e.clock.Today()
}

// GetTodayAssignment возвращает ожидающее назначение на сегодня или nil
func (e *AssignmentEngine) GetTodayAssignment(ctx context.Context, userID uuid.UUID) (*model.Assignment, error) {
	assignment, err := e.store.Assignments().GetPendingForDate(ctx, userID, e.clock.Today())
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// AssignDailyTask возвращает назначение на сегодня, при необходимости выбирая случайное задание
func (e *AssignmentEngine) AssignDailyTask(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) (*model.Assignment, error) {
	today := e.clock.Today()

	var result *model.Assignment
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx model.Store) error {
		existing, err := tx.Assignments().GetPendingForDate(ctx, userID, today)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		task, err := pickRandomTask(ctx, tx.Tasks(), filter, e.randIntn)
		if err != nil {
			return err
		}

		assignment := &model.Assignment{
			UserID:       userID,
			TaskID:       task.ID,
			AssignedDate: &today,
			Status:       model.StatusPending,
			CreatedAt:    e.clock.Now().UTC(),
		}

		inserted, err := tx.Assignments().Insert(ctx, assignment)
		if err != nil {
			return err
		}
		if !inserted {
			// На сегодня уже есть запись, возможно выполненная.
			result, err = tx.Assignments().GetForDate(ctx, userID, today)
			return err
		}

		assignment.Task = task
		result = assignment

		e.logger.Info("Daily task assigned",
			zap.String("user_id", userID.String()),
			zap.String("task_id", task.ID.String()),
			zap.String("date", today.Format(model.DateLayout)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign daily task: %w", err)
	}
	return result, nil
}

// CompleteTask отмечает назначение выполненным. Повторный вызов возвращает запись без изменений.
func (e *AssignmentEngine) CompleteTask(ctx context.Context, userID, assignmentID uuid.UUID, answer *string) (*model.Assignment, error) {
	var (
		result  *model.Assignment
		updated bool
	)
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx model.Store) error {
		assignment, err := tx.Assignments().GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}

		if assignment.UserID != userID {
			return fmt.Errorf("assignment %s belongs to another user: %w", assignmentID, model.ErrForbidden)
		}

		result = assignment
		if assignment.IsCompleted() {
			return nil
		}

		assignment.Complete(e.clock.Now().UTC(), answer)
		if err := tx.Assignments().Update(ctx, assignment); err != nil {
			return err
		}
		updated = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	if updated {
		e.logger.Info("Task completed",
			zap.String("user_id", userID.String()),
			zap.String("assignment_id", assignmentID.String()))
	}
	return result, nil
}

// GetTaskHistory возвращает историю назначений пользователя
func (e *AssignmentEngine) GetTaskHistory(ctx context.Context, userID uuid.UUID, filter model.AssignmentFilter) ([]model.Assignment, error) {
	return e.store.Assignments().ListByUser(ctx, userID, filter)
}

// GetUserProgress считает статистику пользователя
func (e *AssignmentEngine) GetUserProgress(ctx context.Context, userID uuid.UUID) (*model.Progress, error) {
	repo := e.store.Assignments()

	total, completed, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates, err := repo.CompletedDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.Progress{
		TotalTasks:     total,
		CompletedTasks: completed,
		CompletionRate: CompletionRate(completed, total),
		StreakDays:     CurrentStreak(dates, e.clock.Today()),
		LongestStreak:  LongestStreak(dates),
	}, nil
}

// GetNextPendingAssignment возвращает самое старое назначение из очереди
func (e *AssignmentEngine) GetNextPendingAssignment(ctx context.Context, userID uuid.UUID) (*model.Assignment, error) {
	return e.store.Assignments().GetNextQueued(ctx, userID)
}

// AssignPendingToDate привязывает назначение из очереди к дате
func (e *AssignmentEngine) AssignPendingToDate(ctx context.Context, assignmentID uuid.UUID, date time.Time) (*model.Assignment, error) {
	day := model.Day(date, nil)

	var result *model.Assignment
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx model.Store) error {
		assignment, err := tx.Assignments().GetByID(ctx, assignmentID)
		if err != nil {
			return err
		}

		if !assignment.IsQueued() {
			return model.ValidationError{Field: "assigned_date", Message: "assignment is already scheduled"}
		}
		if assignment.IsCompleted() {
			return model.ValidationError{Field: "assigned_date", Message: "assignment is already completed"}
		}

		_, err = tx.Assignments().GetForDate(ctx, assignment.UserID, day)
		if err == nil {
			return fmt.Errorf("user already has an assignment on %s: %w", day.Format(model.DateLayout), model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		assignment.AssignedDate = &day
		if err := tx.Assignments().Update(ctx, assignment); err != nil {
			return err
		}

		result = assignment
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule assignment: %w", err)
	}
	return result, nil
}

// CreateDailyAssignment создает назначение вручную. Без даты оно попадает в очередь.
// Если на дату уже есть назначение, возвращается оно.
func (e *AssignmentEngine) CreateDailyAssignment(ctx context.Context, userID, taskID uuid.UUID, date *time.Time) (*model.Assignment, error) {
	var result *model.Assignment
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx model.Store) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}

		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}

		assignment := &model.Assignment{
			UserID:    userID,
			TaskID:    taskID,
			Status:    model.StatusPending,
			CreatedAt: e.clock.Now().UTC(),
		}
		if date != nil {
			day := model.Day(*date, nil)
			assignment.AssignedDate = &day
		}

		inserted, err := tx.Assignments().Insert(ctx, assignment)
		if err != nil {
			return err
		}
		if !inserted {
			result, err = tx.Assignments().GetForDate(ctx, userID, *assignment.AssignedDate)
			return err
		}

		assignment.Task = task
		result = assignment
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	return result, nil
}

// DeleteAssignment удаляет назначение
func (e *AssignmentEngine) DeleteAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	if err := e.store.Assignments().Delete(ctx, assignmentID); err != nil {
		return err
	}
	e.logger.Info("Assignment deleted", zap.String("assignment_id", assignmentID.String()))
	return nil
}
