package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/constants"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestStaleJobPostExpiryJob_Execute(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	posts := testutil.NewMemoryJobPosts()
	applications := testutil.NewMemoryApplications(posts)
	notifier := &testutil.RecordingNotifier{}

	owner := uuid.New()
	yesterday := fixedNow.AddDate(0, 0, -1)

	stale := posts.Add(owner, models.JobPostStatusPending)
	stale.CreatedAt = fixedNow.AddDate(0, 0, -10)
	stale.StartDate = yesterday
	first := applications.Add(stale.ID, uuid.New())
	second := applications.Add(stale.ID, uuid.New())

	recent := posts.Add(owner, models.JobPostStatusPending)
	recent.CreatedAt = fixedNow.AddDate(0, 0, -2)
	recent.StartDate = yesterday

	upcoming := posts.Add(owner, models.JobPostStatusPending)
	upcoming.CreatedAt = fixedNow.AddDate(0, 0, -10)
	upcoming.StartDate = fixedNow.AddDate(0, 0, 1)

	confirmed := posts.Add(owner, models.JobPostStatusConfirmed)
	confirmed.CreatedAt = fixedNow.AddDate(0, 0, -10)
	confirmed.StartDate = yesterday

	testutil.ExpectTransactions(mock, 1)

	job := NewStaleJobPostExpiryJob(
		db,
		services.NewTransactionService(db),
		repositories.Repository{JobPost: posts, JobApplication: applications},
		notifier,
		7,
		Daily,
	)
	job.now = func() time.Time { return fixedNow }

	require.NoError(t, job.Execute(context.Background()))

	assert.Equal(t, models.JobPostStatusCancelled, posts.Posts[stale.ID].Status)
	assert.NotNil(t, posts.Posts[stale.ID].CancelledAt)
	assert.Equal(t, models.JobPostStatusPending, posts.Posts[recent.ID].Status)
	assert.Equal(t, models.JobPostStatusPending, posts.Posts[upcoming.ID].Status)
	assert.Equal(t, models.JobPostStatusConfirmed, posts.Posts[confirmed.ID].Status)

	assert.Equal(t, models.JobApplicationStatusRejected, applications.StatusOf(first.ID))
	assert.Equal(t, models.JobApplicationStatusRejected, applications.StatusOf(second.ID))

	assert.Equal(t, []models.NotificationType{models.NotificationJobStatusChanged}, notifier.To(owner))
	assert.Equal(t, []models.NotificationType{models.NotificationApplicationRejected}, notifier.To(first.ApplicantID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaleJobPostExpiryJob_SkipsPostsThatMoved(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	posts := testutil.NewMemoryJobPosts()
	notifier := &testutil.RecordingNotifier{}

	owner := uuid.New()
	post := posts.Add(owner, models.JobPostStatusConfirmed)

	testutil.ExpectTransactions(mock, 1)

	job := NewStaleJobPostExpiryJob(
		db,
		services.NewTransactionService(db),
		repositories.Repository{JobPost: posts, JobApplication: testutil.NewMemoryApplications(posts)},
		notifier,
		7,
		Daily,
	)

	applicants, expired, err := job.expire(context.Background(), post.ID, fixedNow)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Empty(t, applicants)
	assert.Equal(t, models.JobPostStatusConfirmed, posts.Posts[post.ID].Status)
	assert.Empty(t, notifier.Sent)
}

type recordingPrune struct {
	repositories.NotificationRepository
	cutoff time.Time
	err    error
}

func (r *recordingPrune) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	return 4, r.err
}

func TestNotificationPruneJob_Execute(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	repo := &recordingPrune{}

	job := NewNotificationPruneJob(db, repo, 30, DailyMaintenance)
	job.now = func() time.Time { return fixedNow }

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), repo.cutoff)
	assert.Equal(t, constants.JobNotificationPrune, job.Name())

	repo.err = errors.New("connection reset")
	assert.Error(t, job.Execute(context.Background()))
}

type fakeCleaner struct {
	calls int
	err   error
}

func (c *fakeCleaner) CleanupOrphans(ctx context.Context) (int, error) {
	c.calls++
	return 2, c.err
}

func TestUploadCleanupJob_Execute(t *testing.T) {
	cleaner := &fakeCleaner{}
	job := NewUploadCleanupJob(cleaner, Monthly)

	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, Monthly, job.Schedule())

	cleaner.err = errors.New("disk full")
	assert.Error(t, job.Execute(context.Background()))
}

func TestRegisterAllJobs(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	scheduler := services.NewSchedulerService()

	err := RegisterAllJobs(
		config.Config{JobPostExpiryDays: 14, NotificationRetentionDays: 30},
		db,
		services.Service{
			Scheduler:   scheduler,
			Transaction: services.NewTransactionService(db),
		},
		repositories.Repository{},
	)

	require.NoError(t, err)
	assert.Equal(t, len(constants.JobNames), scheduler.GetJobCount())
}
