package jobs

import (
	"context"
	"time"

	"kamwaalay/internal/constants"
	"kamwaalay/internal/database"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type NotificationPruneJob struct {
	db            database.DB
	repo          repositories.NotificationRepository
	retentionDays int
	now           func() time.Time
	log           logger.Logger
	schedule      services.Schedule
}

func NewNotificationPruneJob(
	db database.DB,
	repo repositories.NotificationRepository,
	retentionDays int,
	schedule services.Schedule,
) *NotificationPruneJob {
	log := logger.New("notificationPruneJob")
	log.Info("Creating notification prune job", "schedule", schedule, "retentionDays", retentionDays)

	return &NotificationPruneJob{
		db:            db,
		repo:          repo,
		retentionDays: retentionDays,
		now:           time.Now,
		log:           log,
		schedule:      schedule,
	}
}

func (j *NotificationPruneJob) Name() string {
	return constants.JobNotificationPrune
}

func (j *NotificationPruneJob) Schedule() services.Schedule {
	return j.schedule
}

// Execute hard deletes notifications read before the retention window.
func (j *NotificationPruneJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := j.now().UTC().AddDate(0, 0, -j.retentionDays)

	deleted, err := j.repo.DeleteReadBefore(ctx, j.db.SQL, cutoff)
	if err != nil {
		return log.Err("failed to prune notifications", err, "cutoff", cutoff)
	}

	log.Info("Notification prune completed", "deleted", deleted, "cutoff", cutoff)
	return nil
}
