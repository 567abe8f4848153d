package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule Schedule
	runs     int
	err      error
}

func (j *countingJob) Name() string       { return j.name }
func (j *countingJob) Schedule() Schedule { return j.schedule }
func (j *countingJob) Execute(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestSchedulerService_AddJob(t *testing.T) {
	scheduler := NewSchedulerService()

	for _, schedule := range []Schedule{Hourly, Daily, DailyMaintenance, Monthly} {
		require.NoError(t, scheduler.AddJob(&countingJob{name: "job", schedule: schedule}))
	}

	assert.Equal(t, 4, scheduler.GetJobCount())
	assert.False(t, scheduler.IsRunning())
}

func TestSchedulerService_RejectsUnknownSchedule(t *testing.T) {
	scheduler := NewSchedulerService()

	err := scheduler.AddJob(&countingJob{name: "broken", schedule: Schedule(42)})

	assert.Error(t, err)
	assert.Zero(t, scheduler.GetJobCount())
}

func TestSchedulerService_StartAndStop(t *testing.T) {
	ctx := context.Background()
	scheduler := NewSchedulerService()

	require.NoError(t, scheduler.Start(ctx))
	assert.False(t, scheduler.IsRunning(), "no jobs means no start")

	require.NoError(t, scheduler.AddJob(&countingJob{name: "daily", schedule: Daily}))
	require.NoError(t, scheduler.Start(ctx))
	assert.True(t, scheduler.IsRunning())

	require.NoError(t, scheduler.Stop(ctx))
	assert.False(t, scheduler.IsRunning())
}

func TestSchedulerService_TriggerJobByName(t *testing.T) {
	ctx := context.Background()
	scheduler := NewSchedulerService()
	job := &countingJob{name: "prune", schedule: DailyMaintenance}
	failing := &countingJob{name: "failing", schedule: Daily, err: errors.New("boom")}
	require.NoError(t, scheduler.AddJob(job))
	require.NoError(t, scheduler.AddJob(failing))

	require.NoError(t, scheduler.TriggerJobByName(ctx, "prune"))
	assert.Equal(t, 1, job.runs)

	assert.Error(t, scheduler.TriggerJobByName(ctx, "failing"))
	assert.Error(t, scheduler.TriggerJobByName(ctx, "missing"))
}
