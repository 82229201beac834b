package service

import (
	"context"
	"fmt"

	"dailymind/internal/formatter"
	"dailymind/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender доставляет HTML сообщение в чат пользователя
type Sender interface {
	Send(ctx context.Context, chatID int64, htmlText string) error
}

// NotifiableUsers возвращает получателей рассылки
type NotifiableUsers interface {
	ListNotifiable(ctx context.Context) ([]model.User, error)
}

// DailyAssigner часть движка назначений, нужная рассылке
type DailyAssigner interface {
	GetTodayAssignment(ctx context.Context, userID uuid.UUID) (*model.Assignment, error)
	AssignDailyTask(ctx context.Context, userID uuid.UUID, filter model.TaskFilter) (*model.Assignment, error)
}

// DispatchResult итог одной рассылки
type DispatchResult struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Notifier рассылает утренние задания и вечерние напоминания
type Notifier struct {
	users    NotifiableUsers
	assigner DailyAssigner
	sender   Sender
	logger   *zap.Logger
}

// NewNotifier создает новый сервис рассылок
func NewNotifier(users NotifiableUsers, assigner DailyAssigner, sender Sender, logger *zap.Logger) *Notifier {
	return &Notifier{
		users:    users,
		assigner: assigner,
		sender:   sender,
		logger:   logger,
	}
}

// SendMorningTasks выдает каждому пользователю задание на день и отправляет его
func (n *Notifier) SendMorningTasks(ctx context.Context) (DispatchResult, error) {
	return n.dispatch(ctx, "morning_tasks", func(ctx context.Context, user *model.User) (string, error) {
		assignment, err := n.assigner.GetTodayAssignment(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if assignment == nil {
			assignment, err = n.assigner.AssignDailyTask(ctx, user.ID, model.TaskFilter{})
			if err != nil {
				return "", err
			}
		}
		if assignment.IsCompleted() {
			return "", nil
		}
		return formatter.FormatMorningTask(user.Name, assignment.Task), nil
	})
}

// SendEveningReminders напоминает тем, кто еще не выполнил задание на сегодня
func (n *Notifier) SendEveningReminders(ctx context.Context) (DispatchResult, error) {
	return n.dispatch(ctx, "evening_reminders", func(ctx context.Context, user *model.User) (string, error) {
		assignment, err := n.assigner.GetTodayAssignment(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if assignment == nil || assignment.IsCompleted() {
			return "", nil
		}
		return formatter.FormatEveningReminder(assignment.Task), nil
	})
}

// dispatch проходит по пользователям последовательно. Пустое сообщение означает пропуск.
func (n *Notifier) dispatch(ctx context.Context, kind string, build func(ctx context.Context, user *model.User) (string, error)) (DispatchResult, error) {
	var result DispatchResult

	users, err := n.users.ListNotifiable(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list users for %s: %w", kind, err)
	}
	result.Total = len(users)

	for i := range users {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		user := &users[i]
		if !user.HasChat() || !user.IsActive {
			result.Skipped++
			continue
		}

		text, err := build(ctx, user)
		if err != nil {
			result.Failed++
			n.logger.Error("Failed to prepare notification",
				zap.String("kind", kind),
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			continue
		}
		if text == "" {
			result.Skipped++
			continue
		}

		if err := n.sender.Send(ctx, *user.TelegramID, text); err != nil {
			result.Failed++
			n.logger.Error("Failed to send notification",
				zap.String("kind", kind),
				zap.String("user_id", user.ID.String()),
				zap.Int64("chat_id", *user.TelegramID),
				zap.Error(err))
			continue
		}
		result.Sent++
	}

	n.logger.Info("Notification batch finished",
		zap.String("kind", kind),
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}
