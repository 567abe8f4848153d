package jobApplicationController

import (
	"context"
	"errors"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/types"
	"kamwaalay/internal/utils"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplyRequest struct {
	Message      *string          `json:"message"      validate:"omitempty,max=2000"`
	ProposedRate *decimal.Decimal `json:"proposedRate"`
}

type JobApplicationControllerInterface interface {
	Apply(ctx context.Context, user *User, jobPostID uuid.UUID, request ApplyRequest) (*JobApplication, error)
	ListForPost(ctx context.Context, user *User, jobPostID uuid.UUID) ([]*JobApplication, error)
	Mine(ctx context.Context, user *User, page repositories.Page) (types.List[*JobApplication], error)
	Accept(ctx context.Context, user *User, id uuid.UUID) (*JobApplication, error)
	Reject(ctx context.Context, user *User, id uuid.UUID) (*JobApplication, error)
	Withdraw(ctx context.Context, user *User, id uuid.UUID) (*JobApplication, error)
	AdminList(ctx context.Context, filter repositories.JobApplicationFilter) (types.List[*JobApplication], error)
}

type JobApplicationController struct {
	applicationRepo    repositories.JobApplicationRepository
	jobPostRepo        repositories.JobPostRepository
	transactionService *services.TransactionService
	notifier           services.Notifier
	db                 database.DB
	config             config.Config
	now                func() time.Time
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) JobApplicationControllerInterface {
	return &JobApplicationController{
		applicationRepo:    repos.JobApplication,
		jobPostRepo:        repos.JobPost,
		transactionService: services.Transaction,
		notifier:           services.Notification,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("jobApplicationController"),
	}
}

var errDuplicateApplication = apperrors.Unprocessable("You have already applied to this job")

func (c *JobApplicationController) Apply(
	ctx context.Context,
	user *User,
	jobPostID uuid.UUID,
	request ApplyRequest,
) (*JobApplication, error) {
	log := c.log.TraceFromContext(ctx).Function("Apply")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if request.ProposedRate != nil && request.ProposedRate.IsNegative() {
		return nil, apperrors.Field("proposedRate", "Must be greater than or equal to 0")
	}

	post, err := c.jobPostRepo.GetByID(ctx, c.db.SQL, jobPostID)
	if err != nil {
		return nil, err
	}
	if post.IsOwnedBy(user.ID) {
		return nil, apperrors.Forbidden("You cannot apply to your own job post")
	}
	if post.Status != JobPostStatusPending {
		return nil, apperrors.Unprocessable("This job is no longer accepting applications")
	}

	exists, err := c.applicationRepo.Exists(ctx, c.db.SQL, jobPostID, user.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateApplication
	}

	application := &JobApplication{
		JobPostID:    jobPostID,
		ApplicantID:  user.ID,
		Message:      cleanOptional(request.Message),
		ProposedRate: request.ProposedRate,
		Status:       JobApplicationStatusPending,
	}
	if err := c.applicationRepo.Create(ctx, c.db.SQL, application); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDuplicateApplication
		}
		return nil, err
	}

	if err := c.notifier.Notify(ctx, post.UserID, NotificationApplicationReceived, map[string]any{
		"jobPostId":     jobPostID,
		"applicationId": application.ID,
		"applicantName": user.Name,
	}); err != nil {
		log.Warn("failed to notify job owner", "error", err, "jobPostID", jobPostID)
	}

	log.Info("job application created", "applicationID", application.ID, "jobPostID", jobPostID)
	return application, nil
}

func (c *JobApplicationController) ListForPost(
	ctx context.Context,
	user *User,
	jobPostID uuid.UUID,
) ([]*JobApplication, error) {
	post, err := c.jobPostRepo.GetByID(ctx, c.db.SQL, jobPostID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(user.ID) && !user.IsAdmin() {
		return nil, apperrors.Forbidden("Only the job owner can view its applications")
	}

	applications, err := c.applicationRepo.ListByJobPost(ctx, c.db.SQL, jobPostID)
	if err != nil {
		return nil, err
	}
	if applications == nil {
		applications = []*JobApplication{}
	}
	return applications, nil
}

func (c *JobApplicationController) Mine(
	ctx context.Context,
	user *User,
	page repositories.Page,
) (types.List[*JobApplication], error) {
	applications, total, err := c.applicationRepo.ListByApplicant(ctx, c.db.SQL, user.ID, page)
	if err != nil {
		return types.List[*JobApplication]{}, err
	}
	return types.NewList(applications, page, total), nil
}

// Accept confirms the job post for the applicant and rejects every other
// pending application. The job post row stays locked until commit, so two
// concurrent accepts on the same post cannot both succeed.
func (c *JobApplicationController) Accept(
	ctx context.Context,
	user *User,
	id uuid.UUID,
) (*JobApplication, error) {
	log := c.log.TraceFromContext(ctx).Function("Accept")

	var (
		winner   *JobApplication
		siblings []*JobApplication
	)

	at := c.now()
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		application, post, err := c.lockApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		if !post.IsOwnedBy(user.ID) {
			return apperrors.Forbidden("Only the job owner can accept applications")
		}
		if post.Status != JobPostStatusPending {
			return apperrors.Unprocessable("This job already has an accepted application")
		}
		if !application.IsPending() {
			return apperrors.Unprocessable("Only pending applications can be accepted")
		}

		pending, err := c.applicationRepo.ListPendingByJobPost(ctx, tx, post.ID)
		if err != nil {
			return err
		}
		for _, other := range pending {
			if other.ID != application.ID {
				siblings = append(siblings, other)
			}
		}

		if err := c.applicationRepo.UpdateStatus(ctx, tx, application.ID, JobApplicationStatusAccepted, at); err != nil {
			return notPending(err, JobApplicationStatusAccepted)
		}
		if err := post.TransitionTo(JobPostStatusConfirmed, at); err != nil {
			return apperrors.Unprocessable("This job can no longer be confirmed")
		}
		if err := c.jobPostRepo.Update(ctx, tx, post.ID, map[string]any{
			"status":           post.Status,
			"assigned_user_id": application.ApplicantID,
		}); err != nil {
			return err
		}
		if err := c.applicationRepo.RejectPending(ctx, tx, post.ID, &application.ID, at); err != nil {
			return err
		}

		winner = application
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.notifier.Notify(ctx, winner.ApplicantID, NotificationApplicationAccepted, map[string]any{
		"jobPostId":     winner.JobPostID,
		"applicationId": winner.ID,
	}); err != nil {
		log.Warn("failed to notify applicant", "error", err, "applicationID", winner.ID)
	}
	for _, sibling := range siblings {
		if err := c.notifier.Notify(ctx, sibling.ApplicantID, NotificationApplicationRejected, map[string]any{
			"jobPostId":     sibling.JobPostID,
			"applicationId": sibling.ID,
		}); err != nil {
			log.Warn("failed to notify applicant", "error", err, "applicationID", sibling.ID)
		}
	}

	log.Info("job application accepted",
		"applicationID", winner.ID,
		"jobPostID", winner.JobPostID,
		"rejected", len(siblings),
	)
	return c.applicationRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *JobApplicationController) Reject(
	ctx context.Context,
	user *User,
	id uuid.UUID,
) (*JobApplication, error) {
	log := c.log.TraceFromContext(ctx).Function("Reject")

	application, err := c.respond(ctx, id, JobApplicationStatusRejected, func(application *JobApplication, post *JobPost) error {
		if !post.IsOwnedBy(user.ID) {
			return apperrors.Forbidden("Only the job owner can reject applications")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.notifier.Notify(ctx, application.ApplicantID, NotificationApplicationRejected, map[string]any{
		"jobPostId":     application.JobPostID,
		"applicationId": application.ID,
	}); err != nil {
		log.Warn("failed to notify applicant", "error", err, "applicationID", application.ID)
	}

	return application, nil
}

func (c *JobApplicationController) Withdraw(
	ctx context.Context,
	user *User,
	id uuid.UUID,
) (*JobApplication, error) {
	return c.respond(ctx, id, JobApplicationStatusWithdrawn, func(application *JobApplication, post *JobPost) error {
		if application.ApplicantID != user.ID {
			return apperrors.Forbidden("You can only withdraw your own applications")
		}
		return nil
	})
}

func (c *JobApplicationController) AdminList(
	ctx context.Context,
	filter repositories.JobApplicationFilter,
) (types.List[*JobApplication], error) {
	applications, total, err := c.applicationRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*JobApplication]{}, err
	}
	return types.NewList(applications, filter.Page, total), nil
}

// respond answers a pending application while the job post row is locked,
// so it cannot race an accept on the same post.
func (c *JobApplicationController) respond(
	ctx context.Context,
	id uuid.UUID,
	status JobApplicationStatus,
	authorize func(*JobApplication, *JobPost) error,
) (*JobApplication, error) {
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		application, post, err := c.lockApplication(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorize(application, post); err != nil {
			return err
		}
		if !application.IsPending() {
			return notPending(repositories.ErrApplicationNotPending, status)
		}

		return notPending(c.applicationRepo.UpdateStatus(ctx, tx, id, status, c.now()), status)
	})
	if err != nil {
		return nil, err
	}

	c.log.TraceFromContext(ctx).Function("respond").
		Info("job application updated", "applicationID", id, "status", status)
	return c.applicationRepo.GetByID(ctx, c.db.SQL, id)
}

// lockApplication locks the parent job post and reads the application again
// under that lock.
func (c *JobApplicationController) lockApplication(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*JobApplication, *JobPost, error) {
	application, err := c.applicationRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}

	post, err := c.jobPostRepo.GetByIDForUpdate(ctx, tx, application.JobPostID)
	if err != nil {
		return nil, nil, err
	}

	application, err = c.applicationRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return application, post, nil
}

func notPending(err error, status JobApplicationStatus) error {
	if errors.Is(err, repositories.ErrApplicationNotPending) {
		return apperrors.Unprocessable("Only pending applications can be " + string(status))
	}
	return err
}

func cleanOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := utils.CleanText(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
