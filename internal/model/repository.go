package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository определяет интерфейс для работы с пользователями.
// Методы Get* возвращают ErrNotFound, если запись не найдена.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	ListNotifiable(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskRepository определяет интерфейс банка заданий
type TaskRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter TaskFilter) ([]Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
	// GetAt возвращает задание с порядковым номером offset среди подходящих под фильтр
	GetAt(ctx context.Context, filter TaskFilter, offset int) (*Task, error)
	Create(ctx context.Context, task *Task) error
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
}

// AssignmentRepository определяет интерфейс для работы с назначениями
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	// GetPendingForDate возвращает самое раннее ожидающее назначение на день
	GetPendingForDate(ctx context.Context, userID uuid.UUID, day time.Time) (*Assignment, error)
	// GetForDate возвращает назначение на день в любом статусе
	GetForDate(ctx context.Context, userID uuid.UUID, day time.Time) (*Assignment, error)
	// GetNextQueued возвращает самое старое назначение без даты
	GetNextQueued(ctx context.Context, userID uuid.UUID) (*Assignment, error)
	// Insert возвращает false, если на этот день у пользователя уже есть назначение
	Insert(ctx context.Context, assignment *Assignment) (bool, error)
	Update(ctx context.Context, assignment *Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, filter AssignmentFilter) ([]Assignment, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (total int, completed int, err error)
	CompletedDates(ctx context.Context, userID uuid.UUID) ([]time.Time, error)
}

// Store объединяет репозитории, которые участвуют в транзакциях
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Assignments() AssignmentRepository
	// RunInTx выполняет fn в транзакции; tx действителен только внутри fn
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
