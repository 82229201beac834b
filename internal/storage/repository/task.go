package repository

import (
	"context"
	"time"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// TaskRepository реализует интерфейс model.TaskRepository
type TaskRepository struct {
	db     bun.IDB
	logger *zap.Logger
}

// NewTaskRepository создает новый репозиторий заданий
func NewTaskRepository(db bun.IDB, logger *zap.Logger) model.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

func applyTaskFilter(query *bun.SelectQuery, filter model.TaskFilter) *bun.SelectQuery {
	if filter.Category != "" {
		query = query.Where("t.category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		query = query.Where("t.difficulty = ?", filter.Difficulty)
	}
	return query
}

// GetByID получает задание по ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task := new(model.Task)
	err := r.db.NewSelect().Model(task).Where("t.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get task by ID", err)
	}
	return task, nil
}

// List получает задания с фильтрацией и пагинацией
func (r *TaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	query := applyTaskFilter(r.db.NewSelect().Model(&tasks), filter).
		Order("t.created_at ASC", "t.id ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, wrapError("failed to list tasks", err)
	}
	return tasks, nil
}

// Count считает задания, подходящие под фильтр
func (r *TaskRepository) Count(ctx context.Context, filter model.TaskFilter) (int, error) {
	count, err := applyTaskFilter(r.db.NewSelect().Model((*model.Task)(nil)), filter).Count(ctx)
	if err != nil {
		return 0, wrapError("failed to count tasks", err)
	}
	return count, nil
}

// GetAt получает задание по порядковому номеру среди подходящих под фильтр
func (r *TaskRepository) GetAt(ctx context.Context, filter model.TaskFilter, offset int) (*model.Task, error) {
	task := new(model.Task)
	err := applyTaskFilter(r.db.NewSelect().Model(task), filter).
		Order("t.id ASC").
		Offset(offset).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapError("failed to get task at offset", err)
	}
	return task, nil
}

// Create создает новое задание
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.NewInsert().Model(task).Exec(ctx)
	if err != nil {
		return wrapError("failed to create task", err)
	}
	return nil
}

// Update обновляет задание
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	res, err := r.db.NewUpdate().Model(task).WherePK().ExcludeColumn("created_at").Exec(ctx)
	if err != nil {
		return wrapError("failed to update task", err)
	}
	return expectAffected("failed to update task", res)
}

// Delete удаляет задание
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*model.Task)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return wrapError("failed to delete task", err)
	}
	return expectAffected("failed to delete task", res)
}

// Categories возвращает список категорий банка заданий
func (r *TaskRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.NewSelect().Model((*model.Task)(nil)).
		Distinct().
		Column("category").
		Order("category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, wrapError("failed to get categories", err)
	}
	return categories, nil
}
