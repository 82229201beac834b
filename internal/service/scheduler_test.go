package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailymind/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExecutor struct {
	calls int
	err   error
}

func (e *stubExecutor) Execute(ctx context.Context, job *model.ScheduledJob) error {
	e.calls++
	return e.err
}

func TestScheduler_RunNow(t *testing.T) {
	ctx := context.Background()
	jobs := newTestJobs()
	scheduler := NewScheduler(NewJobService(jobs, zap.NewNop()), NewClock(time.UTC, nil), zap.NewNop())

	morning := &stubExecutor{}
	evening := &stubExecutor{err: errors.New("1 of 3 deliveries failed")}
	scheduler.RegisterExecutor(model.JobTypeMorningTasks, morning)
	scheduler.RegisterExecutor(model.JobTypeEveningReminders, evening)

	require.NoError(t, scheduler.RunNow(ctx, "morning_tasks"))
	assert.Equal(t, 1, morning.calls)
	assert.Equal(t, []bool{true}, jobs.stats[1])

	err := scheduler.RunNow(ctx, "evening_reminders")
	require.Error(t, err)
	assert.Equal(t, []bool{false}, jobs.stats[2])

	job, err := jobs.GetByName(ctx, "evening_reminders")
	require.NoError(t, err)
	assert.Equal(t, 1, job.ErrorCount)
	assert.Equal(t, "1 of 3 deliveries failed", job.LastError)

	assert.ErrorIs(t, scheduler.RunNow(ctx, "missing"), model.ErrNotFound)
}

func TestScheduler_RunNowWithoutExecutor(t *testing.T) {
	scheduler := NewScheduler(NewJobService(newTestJobs(), zap.NewNop()), NewClock(time.UTC, nil), zap.NewNop())
	assert.ErrorIs(t, scheduler.RunNow(context.Background(), "morning_tasks"), model.ErrNotFound)
}

func TestScheduler_Lifecycle(t *testing.T) {
	ctx := context.Background()
	jobs := newTestJobs()
	scheduler := NewScheduler(NewJobService(jobs, zap.NewNop()), NewClock(time.UTC, nil), zap.NewNop())
	scheduler.RegisterExecutor(model.JobTypeMorningTasks, &stubExecutor{})
	scheduler.RegisterExecutor(model.JobTypeEveningReminders, &stubExecutor{})

	// До запуска перезагрузка ничего не делает
	require.NoError(t, scheduler.Reload())
	assert.False(t, scheduler.IsRunning())

	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()
	assert.Error(t, scheduler.Start())

	status, err := scheduler.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "UTC", status.Timezone)
	require.Len(t, status.Jobs, 2)
	for _, js := range status.Jobs {
		assert.True(t, js.Scheduled, js.Name)
		require.NotNil(t, js.NextRun, js.Name)
	}
	assert.Equal(t, 9, status.Jobs[0].NextRun.Hour())

	require.NoError(t, jobs.UpdateCron(ctx, model.JobTypeMorningTasks, "30 7 * * *"))
	require.NoError(t, scheduler.Reload())

	status, err = scheduler.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, status.Jobs[0].NextRun.Hour())
	assert.Equal(t, 30, status.Jobs[0].NextRun.Minute())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
}
