package repository

import (
	"context"
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AssignmentRepository реализует интерфейс model.AssignmentRepository
type AssignmentRepository struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewAssignmentRepository создает новый репозиторий назначений
func NewAssignmentRepository(db bun.IDB, logger *zap.Logger) model.AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: logger,
	}
}

func dateParam(day time.Time) string {
	return day.Format(model.DateLayout)
}

// GetByID получает назначение по ID вместе с заданием
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	assignment := new(model.Assignment)
	err := r.db.NewSelect().Model(assignment).
		Relation("Task").
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get assignment by ID", err)
	}
	return assignment, nil
}

// GetPendingForDate получает самое раннее ожидающее назначение на день
func (r *AssignmentRepository) GetPendingForDate(ctx context.Context, userID uuid.UUID, day time.Time) (*model.Assignment, error) {
	assignment := new(model.Assignment)
	err := r.db.NewSelect().Model(assignment).
		Relation("Task").
		Where("a.user_id = ?", userID).
		Where("a.assigned_date = ?::date", dateParam(day)).
		Where("a.status = ?", model.StatusPending).
		Order("a.created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get pending assignment", err)
	}
	return assignment, nil
}

// GetForDate получает назначение на день в любом статусе
func (r *AssignmentRepository) GetForDate(ctx context.Context, userID uuid.UUID, day time.Time) (*model.Assignment, error) {
	assignment := new(model.Assignment)
	err := r.db.NewSelect().Model(assignment).
		Relation("Task").
		Where("a.user_id = ?", userID).
		Where("a.assigned_date = ?::date", dateParam(day)).
		Order("a.created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get assignment for date", err)
	}
	return assignment, nil
}

// GetNextQueued получает самое старое назначение без даты
func (r *AssignmentRepository) GetNextQueued(ctx context.Context, userID uuid.UUID) (*model.Assignment, error) {
	assignment := new(model.Assignment)
	err := r.db.NewSelect().Model(assignment).
		Relation("Task").
		Where("a.user_id = ?", userID).
		Where("a.assigned_date IS NULL").
		Where("a.status = ?", model.StatusPending).
		Order("a.created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get next queued assignment", err)
	}
	return assignment, nil
}

// Insert создает назначение. Возвращает false, если на этот день запись уже есть.
func (r *AssignmentRepository) Insert(ctx context.Context, assignment *model.Assignment) (bool, error) {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if assignment.Status == "" {
		assignment.Status = model.StatusPending
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.NewInsert().Model(assignment).
		On("CONFLICT (user_id, assigned_date) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, wrapError("failed to insert assignment", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapError("failed to insert assignment", err)
	}

	if n == 0 {
		r.logger.Debug("Assignment for date already exists",
			zap.String("user_id", assignment.UserID.String()))
		return false, nil
	}
	return true, nil
}

// Update обновляет назначение
func (r *AssignmentRepository) Update(ctx context.Context, assignment *model.Assignment) error {
	res, err := r.db.NewUpdate().Model(assignment).
		Column("task_id", "assigned_date", "status", "completed_at", "answer_text").
		WherePK().
		Exec(ctx)
	if err != nil {
		return wrapError("failed to update assignment", err)
	}
	return expectAffected("failed to update assignment", res)
}

// Delete удаляет назначение
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*model.Assignment)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return wrapError("failed to delete assignment", err)
	}
	return expectAffected("failed to delete assignment", res)
}

// ListByUser получает историю назначений пользователя, новые сверху
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter model.AssignmentFilter) ([]model.Assignment, error) {
	var assignments []model.Assignment
	query := r.db.NewSelect().Model(&assignments).
		Relation("Task").
		Where("a.user_id = ?", userID).
		OrderExpr("a.assigned_date DESC NULLS LAST").
		OrderExpr("a.created_at DESC")

	if filter.Status != "" {
		query = query.Where("a.status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("a.assigned_date >= ?::date", dateParam(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("a.assigned_date <= ?::date", dateParam(*filter.To))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, wrapError("failed to list assignments", err)
	}
	return assignments, nil
}

// CountByUser считает все и выполненные назначения пользователя
func (r *AssignmentRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, int, error) {
	var total, completed int
	err := r.db.NewSelect().Model((*model.Assignment)(nil)).
		ColumnExpr("count(*)").
		ColumnExpr("count(*) FILTER (WHERE a.status = ?)", model.StatusCompleted).
		Where("a.user_id = ?", userID).
		Scan(ctx, &total, &completed)
	if err != nil {
		return 0, 0, wrapError("failed to count assignments", err)
	}
	return total, completed, nil
}

// CompletedDates возвращает различные даты выполненных назначений, новые сверху
func (r *AssignmentRepository) CompletedDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.NewSelect().Model((*model.Assignment)(nil)).
		ColumnExpr("DISTINCT a.assigned_date").
		Where("a.user_id = ?", userID).
		Where("a.status = ?", model.StatusCompleted).
		Where("a.assigned_date IS NOT NULL").
		OrderExpr("a.assigned_date DESC").
		Scan(ctx, &dates)
	if err != nil {
		return nil, wrapError("failed to get completed dates", err)
	}
	return dates, nil
}
