package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RandFunc возвращает случайное число в диапазоне [0, n)
type RandFunc func(n int) int

// TaskPatch частичное обновление задания
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
	Difficulty  *model.Difficulty
}

// ContentService содержит бизнес-логику банка заданий
type ContentService struct {
	repo     model.TaskRepository
	randIntn RandFunc
	logger   *zap.Logger
}

// NewContentService создает новый сервис банка заданий
func NewContentService(repo model.TaskRepository, logger *zap.Logger) *ContentService {
	return &ContentService{
		repo:     repo,
		randIntn: rand.IntN,
		logger:   logger,
	}
}

// ListTasks возвращает задания с фильтрацией
func (s *ContentService) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, filter)
}

// CountTasks считает задания, подходящие под фильтр
func (s *ContentService) CountTasks(ctx context.Context, filter model.TaskFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

// GetTask возвращает задание по ID
func (s *ContentService) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateTask создает новое задание
func (s *ContentService) CreateTask(ctx context.Context, task *model.Task) error {
	normalizeTask(task)
	if task.Difficulty == "" {
		task.Difficulty = model.DifficultyMedium
	}

	if err := task.Validate(); err != nil {
		return fmt.Errorf("task validation failed: %w", err)
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return err
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("category", task.Category))
	return nil
}

// UpdateTask частично обновляет задание
func (s *ContentService) UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Difficulty != nil {
		task.Difficulty = *patch.Difficulty
	}
	normalizeTask(task)

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("task validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask удаляет задание вместе с его назначениями
func (s *ContentService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Task deleted", zap.String("task_id", id.String()))
	return nil
}

// Categories возвращает список категорий
func (s *ContentService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// RandomTask выбирает случайное задание, подходящее под фильтр
func (s *ContentService) RandomTask(ctx context.Context, filter model.TaskFilter) (*model.Task, error) {
	return pickRandomTask(ctx, s.repo, filter, s.randIntn)
}

// pickRandomTask считает подходящие задания и берет одно по случайному смещению
func pickRandomTask(ctx context.Context, repo model.TaskRepository, filter model.TaskFilter, randIntn RandFunc) (*model.Task, error) {
	filter.Limit, filter.Offset = 0, 0

	count, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("no task matches category=%q difficulty=%q: %w",
			filter.Category, filter.Difficulty, model.ErrNotFound)
	}

	return repo.GetAt(ctx, filter, randIntn(count))
}

func normalizeTask(task *model.Task) {
	task.Title = strings.TrimSpace(task.Title)
	task.Category = strings.TrimSpace(task.Category)
	task.Difficulty = model.Difficulty(strings.ToLower(strings.TrimSpace(string(task.Difficulty))))
}
