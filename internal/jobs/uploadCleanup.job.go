package jobs

import (
	"context"

	"kamwaalay/internal/constants"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type OrphanCleaner interface {
	CleanupOrphans(ctx context.Context) (int, error)
}

type UploadCleanupJob struct {
	cleaner  OrphanCleaner
	log      logger.Logger
	schedule services.Schedule
}

func NewUploadCleanupJob(cleaner OrphanCleaner, schedule services.Schedule) *UploadCleanupJob {
	log := logger.New("uploadCleanupJob")
	log.Info("Creating upload cleanup job", "schedule", schedule)

	return &UploadCleanupJob{
		cleaner:  cleaner,
		log:      log,
		schedule: schedule,
	}
}

func (j *UploadCleanupJob) Name() string {
	return constants.JobUploadCleanup
}

func (j *UploadCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	removed, err := j.cleaner.CleanupOrphans(ctx)
	if err != nil {
		return log.Err("upload cleanup failed", err)
	}

	log.Info("Upload cleanup completed", "removed", removed)
	return nil
}

func (j *UploadCleanupJob) Schedule() services.Schedule {
	return j.schedule
}
