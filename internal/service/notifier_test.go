package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"dailymind/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNotifier(store *memStore, sender Sender, clk *fixedClock) (*Notifier, *AssignmentEngine) {
	engine := newTestEngine(store, clk)
	users := NewUserService(store.Users(), zap.NewNop())
	return NewNotifier(users, engine, sender, zap.NewNop()), engine
}

func TestSendMorningTasks(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTask("Квадратное дыхание", "дыхание", model.DifficultyMedium)
	anna := store.addUser("Анна", intPtr(1))
	store.addUser("Борис", intPtr(2))
	store.addUser("Без телеграма", nil)

	sender := newRecordingSender()
	sender.failOn[2] = true
	clk := &fixedClock{now: time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)}
	notifier, engine := newTestNotifier(store, sender, clk)

	result, err := notifier.SendMorningTasks(ctx)
	require.NoError(t, err)

	assert.Equal(t, DispatchResult{Total: 2, Sent: 1, Skipped: 0, Failed: 1}, result)
	require.Len(t, sender.sent[1], 1)
	assert.Contains(t, sender.sent[1][0], "Анна")
	assert.Contains(t, sender.sent[1][0], "Квадратное дыхание")

	today, err := engine.GetTodayAssignment(ctx, anna.ID)
	require.NoError(t, err)
	require.NotNil(t, today)

	t.Run("Повторная рассылка не создает новых назначений", func(t *testing.T) {
		_, err := notifier.SendMorningTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, store.assignments, 2)
	})
}

func TestSendMorningTasks_SkipsCompleted(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTask("Дыхание", "дыхание", model.DifficultyEasy)
	user := store.addUser("Вера", intPtr(3))
	sender := newRecordingSender()
	notifier, engine := newTestNotifier(store, sender, &fixedClock{now: time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)})

	assignment, err := engine.AssignDailyTask(ctx, user.ID, model.TaskFilter{})
	require.NoError(t, err)
	_, err = engine.CompleteTask(ctx, user.ID, assignment.ID, nil)
	require.NoError(t, err)

	result, err := notifier.SendMorningTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, sender.sent)
}

func TestSendEveningReminders(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.addTask("Дневник <благодарности>", "дневник", model.DifficultyEasy)
	pending := store.addUser("Глеб", intPtr(10))
	done := store.addUser("Дина", intPtr(11))
	store.addUser("Без задания", intPtr(12))
	sender := newRecordingSender()
	notifier, engine := newTestNotifier(store, sender, &fixedClock{now: time.Date(2025, 10, 10, 20, 0, 0, 0, time.UTC)})

	_, err := engine.AssignDailyTask(ctx, pending.ID, model.TaskFilter{})
	require.NoError(t, err)
	finished, err := engine.AssignDailyTask(ctx, done.ID, model.TaskFilter{})
	require.NoError(t, err)
	_, err = engine.CompleteTask(ctx, done.ID, finished.ID, nil)
	require.NoError(t, err)

	result, err := notifier.SendEveningReminders(ctx)
	require.NoError(t, err)

	assert.Equal(t, DispatchResult{Total: 3, Sent: 1, Skipped: 2}, result)
	require.Len(t, sender.sent[10], 1)
	assert.True(t, strings.Contains(sender.sent[10][0], "&lt;благодарности&gt;"))
}

func TestExecutors_FailedDeliveriesAreErrors(t *testing.T) {
	store := newMemStore()
	store.addTask("Дыхание", "дыхание", model.DifficultyEasy)
	store.addUser("Анна", intPtr(1))
	sender := newRecordingSender()
	sender.failOn[1] = true
	notifier, _ := newTestNotifier(store, sender, &fixedClock{now: time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)})

	err := NewMorningTasksExecutor(notifier, zap.NewNop()).Execute(context.Background(), &model.ScheduledJob{})
	assert.EqualError(t, err, "1 of 1 deliveries failed")

	sender.failOn[1] = false
	err = NewMorningTasksExecutor(notifier, zap.NewNop()).Execute(context.Background(), &model.ScheduledJob{})
	assert.NoError(t, err)
}
