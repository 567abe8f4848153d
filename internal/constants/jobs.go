package constants

// Names of the scheduled jobs, also accepted by the admin trigger endpoint.
const (
	JobStaleJobPostExpiry = "StaleJobPostExpiry"
	JobNotificationPrune  = "NotificationPrune"
	JobUploadCleanup      = "UploadCleanup"
)

var JobNames = []string{JobStaleJobPostExpiry, JobNotificationPrune, JobUploadCleanup}
