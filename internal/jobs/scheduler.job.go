package jobs

import (
	"kamwaalay/config"
	"kamwaalay/internal/database"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily            = services.Daily
	DailyMaintenance = services.DailyMaintenance
	Monthly          = services.Monthly
)

func RegisterAllJobs(
	config config.Config,
	db database.DB,
	services services.Service,
	repos repositories.Repository,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	staleJobPostJob := NewStaleJobPostExpiryJob(
		db,
		services.Transaction,
		repos,
		services.Notification,
		config.JobPostExpiryDays,
		Daily,
	)
	if err := services.Scheduler.AddJob(staleJobPostJob); err != nil {
		return log.Err("failed to register stale job post expiry job", err)
	}
	log.Info("Registered stale job post expiry job", "schedule", "daily")

	notificationPruneJob := NewNotificationPruneJob(
		db,
		repos.Notification,
		config.NotificationRetentionDays,
		DailyMaintenance,
	)
	if err := services.Scheduler.AddJob(notificationPruneJob); err != nil {
		return log.Err("failed to register notification prune job", err)
	}
	log.Info("Registered notification prune job", "schedule", "daily")

	uploadCleanupJob := NewUploadCleanupJob(services.UploadCleanup, Monthly)
	if err := services.Scheduler.AddJob(uploadCleanupJob); err != nil {
		return log.Err("failed to register upload cleanup job", err)
	}
	log.Info("Registered upload cleanup job", "schedule", "monthly")

	return nil
}
