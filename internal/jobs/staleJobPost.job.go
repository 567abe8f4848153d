package jobs

import (
	"context"
	"errors"
	"time"

	"kamwaalay/internal/constants"
	"kamwaalay/internal/database"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaleJobPostExpiryJob cancels pending job posts nobody was hired for once
// their start date has passed.
type StaleJobPostExpiryJob struct {
	db              database.DB
	transaction     *services.TransactionService
	jobPostRepo     repositories.JobPostRepository
	applicationRepo repositories.JobApplicationRepository
	notifier        services.Notifier
	expiryDays      int
	now             func() time.Time
	log             logger.Logger
	schedule        services.Schedule
}

func NewStaleJobPostExpiryJob(
	db database.DB,
	transaction *services.TransactionService,
	repos repositories.Repository,
	notifier services.Notifier,
	expiryDays int,
	schedule services.Schedule,
) *StaleJobPostExpiryJob {
	log := logger.New("staleJobPostExpiryJob")
	log.Info("Creating stale job post expiry job", "schedule", schedule, "expiryDays", expiryDays)

	return &StaleJobPostExpiryJob{
		db:              db,
		transaction:     transaction,
		jobPostRepo:     repos.JobPost,
		applicationRepo: repos.JobApplication,
		notifier:        notifier,
		expiryDays:      expiryDays,
		now:             time.Now,
		log:             log,
		schedule:        schedule,
	}
}

func (j *StaleJobPostExpiryJob) Name() string {
	return constants.JobStaleJobPostExpiry
}

func (j *StaleJobPostExpiryJob) Schedule() services.Schedule {
	return j.schedule
}

func (j *StaleJobPostExpiryJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	now := j.now().UTC()
	createdBefore := now.AddDate(0, 0, -j.expiryDays)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	posts, err := j.jobPostRepo.ListStale(ctx, j.db.SQL, createdBefore, today)
	if err != nil {
		return log.Err("failed to list stale job posts", err)
	}

	log.Info("Expiring stale job posts", "count", len(posts), "createdBefore", createdBefore)

	var errs []error
	expired := 0
	for _, post := range posts {
		applicants, ok, err := j.expire(ctx, post.ID, now)
		if err != nil {
			log.Er("failed to expire job post", err, "jobPostID", post.ID)
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		expired++

		data := map[string]any{
			"jobPostId":      post.ID,
			"status":         models.JobPostStatusCancelled,
			"previousStatus": models.JobPostStatusPending,
			"reason":         "expired",
		}
		services.NotifyAll(ctx, j.notifier, []uuid.UUID{post.UserID}, models.NotificationJobStatusChanged, data)
		services.NotifyAll(ctx, j.notifier, applicants, models.NotificationApplicationRejected, map[string]any{
			"jobPostId": post.ID,
			"reason":    "expired",
		})
	}

	log.Info("Stale job post expiry completed", "expired", expired, "failed", len(errs))
	return errors.Join(errs...)
}

// expire cancels one post under a row lock. A post that left pending since it
// was listed is skipped.
func (j *StaleJobPostExpiryJob) expire(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) ([]uuid.UUID, bool, error) {
	var applicants []uuid.UUID
	expired := false

	err := j.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		post, err := j.jobPostRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if post.Status != models.JobPostStatusPending {
			return nil
		}
		if err := post.TransitionTo(models.JobPostStatusCancelled, at); err != nil {
			return err
		}

		updates := map[string]any{"status": post.Status}
		if post.CancelledAt != nil {
			updates["cancelled_at"] = *post.CancelledAt
		}
		if err := j.jobPostRepo.Update(ctx, tx, id, updates); err != nil {
			return err
		}

		pending, err := j.applicationRepo.ListPendingByJobPost(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, application := range pending {
			applicants = append(applicants, application.ApplicantID)
		}

		expired = true
		return j.applicationRepo.RejectPending(ctx, tx, id, nil, at)
	})
	if err != nil {
		return nil, false, err
	}

	return applicants, expired, nil
}
