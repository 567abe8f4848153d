package jobPostController

import (
	"context"
	"errors"
	"strings"
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

type CreateJobPostRequest struct {
	ServiceTypeID       int              `json:"serviceTypeId"       validate:"required"`
	WorkType            string           `json:"workType"            validate:"required,worktype"`
	City                string           `json:"city"                validate:"required,max=100"`
	Area                *string          `json:"area"                validate:"omitempty,max=100"`
	Address             *string          `json:"address"             validate:"omitempty,max=500"`
	StartDate           string           `json:"startDate"           validate:"required,date"`
	StartTime           *string          `json:"startTime"           validate:"omitempty,clock"`
	Budget              *decimal.Decimal `json:"budget"`
	Description         *string          `json:"description"         validate:"omitempty,max=5000"`
	SpecialRequirements *string          `json:"specialRequirements" validate:"omitempty,max=2000"`
}

type UpdateJobPostRequest struct {
	ServiceTypeID       *int             `json:"serviceTypeId"`
	WorkType            *string          `json:"workType"            validate:"omitempty,worktype"`
	City                *string          `json:"city"                validate:"omitempty,min=1,max=100"`
	Area                *string          `json:"area"                validate:"omitempty,max=100"`
	Address             *string          `json:"address"             validate:"omitempty,max=500"`
	StartDate           *string          `json:"startDate"           validate:"omitempty,date"`
	StartTime           *string          `json:"startTime"           validate:"omitempty,clock"`
	Budget              *decimal.Decimal `json:"budget"`
	Description         *string          `json:"description"         validate:"omitempty,max=5000"`
	SpecialRequirements *string          `json:"specialRequirements" validate:"omitempty,max=2000"`
}

type AdminStatusRequest struct {
	Status     string  `json:"status"     validate:"required,jobstatus"`
	AdminNotes *string `json:"adminNotes" validate:"omitempty,max=2000"`
}

type JobPostControllerInterface interface {
	Create(ctx context.Context, user *User, request CreateJobPostRequest) (*JobPost, error)
	ListOpen(ctx context.Context, filter repositories.JobPostFilter) (types.List[*JobPost], error)
	Mine(ctx context.Context, user *User, page repositories.Page) (types.List[*JobPost], error)
	Get(ctx context.Context, viewer *User, id uuid.UUID) (*JobPost, error)
	Update(ctx context.Context, user *User, id uuid.UUID, request UpdateJobPostRequest) (*JobPost, error)
	Cancel(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error)
	Start(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error)
	Complete(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error)
	AdminList(ctx context.Context, filter repositories.JobPostFilter) (types.List[*JobPost], error)
	AdminUpdateStatus(ctx context.Context, admin *User, id uuid.UUID, request AdminStatusRequest) (*JobPost, error)
}

type JobPostController struct {
	jobPostRepo        repositories.JobPostRepository
	applicationRepo    repositories.JobApplicationRepository
	catalogRepo        repositories.CatalogRepository
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
) JobPostControllerInterface {
	return &JobPostController{
		jobPostRepo:        repos.JobPost,
		applicationRepo:    repos.JobApplication,
		catalogRepo:        repos.Catalog,
		transactionService: services.Transaction,
		notifier:           services.Notification,
		db:                 db,
		config:             config,
		now:                time.Now,
		log:                logger.New("jobPostController"),
	}
}

func (c *JobPostController) Create(
	ctx context.Context,
	user *User,
	request CreateJobPostRequest,
) (*JobPost, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	startDate, err := c.parseStartDate(request.StartDate)
	if err != nil {
		return nil, err
	}
	if err := validBudget(request.Budget); err != nil {
		return nil, err
	}
	if err := c.ensureServiceType(ctx, request.ServiceTypeID); err != nil {
		return nil, err
	}

	post := &JobPost{
		UserID:              user.ID,
		ServiceTypeID:       request.ServiceTypeID,
		WorkType:            WorkType(request.WorkType),
		City:                utils.CleanText(request.City),
		Area:                cleanOptional(request.Area),
		Address:             cleanOptional(request.Address),
		StartDate:           startDate,
		StartTime:           request.StartTime,
		Budget:              request.Budget,
		Description:         cleanOptional(request.Description),
		SpecialRequirements: cleanOptional(request.SpecialRequirements),
		Status:              JobPostStatusPending,
	}
	if err := c.jobPostRepo.Create(ctx, c.db.SQL, post); err != nil {
		return nil, err
	}

	log.Info("job post created", "jobPostID", post.ID, "userID", user.ID)
	return c.jobPostRepo.GetByID(ctx, c.db.SQL, post.ID)
}

func (c *JobPostController) ListOpen(
	ctx context.Context,
	filter repositories.JobPostFilter,
) (types.List[*JobPost], error) {
	posts, total, err := c.jobPostRepo.ListOpen(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*JobPost]{}, err
	}
	for _, post := range posts {
		redact(post)
	}
	return types.NewList(posts, filter.Page, total), nil
}

func (c *JobPostController) Mine(
	ctx context.Context,
	user *User,
	page repositories.Page,
) (types.List[*JobPost], error) {
	posts, total, err := c.jobPostRepo.ListByUser(ctx, c.db.SQL, user.ID, page)
	if err != nil {
		return types.List[*JobPost]{}, err
	}
	return types.NewList(posts, page, total), nil
}

// Get shows full details to the owner, the assigned helper, applicants and
// admins. Everyone else only sees open posts, without the street address.
func (c *JobPostController) Get(ctx context.Context, viewer *User, id uuid.UUID) (*JobPost, error) {
	post, err := c.jobPostRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}

	if post.IsOwnedBy(viewer.ID) || post.IsAssignedTo(viewer.ID) || viewer.IsAdmin() {
		return post, nil
	}

	applied, err := c.applicationRepo.Exists(ctx, c.db.SQL, post.ID, viewer.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		return post, nil
	}

	if post.Status != JobPostStatusPending {
		return nil, apperrors.NotFound("Job post")
	}

	return redact(post), nil
}

func (c *JobPostController) Update(
	ctx context.Context,
	user *User,
	id uuid.UUID,
	request UpdateJobPostRequest,
) (*JobPost, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		post, err := c.jobPostRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !post.IsOwnedBy(user.ID) {
			return apperrors.Forbidden("You can only update your own job posts")
		}
		if post.Status != JobPostStatusPending {
			return apperrors.Unprocessable("Only open job posts can be updated")
		}

		updates, err := c.updates(ctx, request)
		if err != nil || len(updates) == 0 {
			return err
		}
		return c.jobPostRepo.Update(ctx, tx, id, updates)
	})
	if err != nil {
		return nil, err
	}

	return c.jobPostRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *JobPostController) updates(ctx context.Context, request UpdateJobPostRequest) (map[string]any, error) {
	updates := map[string]any{}
	if request.ServiceTypeID != nil {
		if err := c.ensureServiceType(ctx, *request.ServiceTypeID); err != nil {
			return nil, err
		}
		updates["service_type_id"] = *request.ServiceTypeID
	}
	if request.WorkType != nil {
		updates["work_type"] = *request.WorkType
	}
	if request.City != nil {
		updates["city"] = utils.CleanText(*request.City)
	}
	if request.StartDate != nil {
		startDate, err := c.parseStartDate(*request.StartDate)
		if err != nil {
			return nil, err
		}
		updates["start_date"] = startDate
	}
	if request.Budget != nil {
		if err := validBudget(request.Budget); err != nil {
			return nil, err
		}
		updates["budget"] = *request.Budget
	}
	if request.StartTime != nil {
		updates["start_time"] = *request.StartTime
	}
	setOptional(updates, "area", request.Area)
	setOptional(updates, "address", request.Address)
	setOptional(updates, "description", request.Description)
	setOptional(updates, "special_requirements", request.SpecialRequirements)
	return updates, nil
}

// Cancel is allowed to the owner while the post is open or confirmed. Pending
// applications are rejected along with it.
func (c *JobPostController) Cancel(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error) {
	return c.transition(ctx, user, id, JobPostStatusCancelled, nil, func(post *JobPost) error {
		if !post.IsOwnedBy(user.ID) {
			return apperrors.Forbidden("Only the job owner can cancel this job")
		}
		return nil
	})
}

func (c *JobPostController) Start(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error) {
	return c.transition(ctx, user, id, JobPostStatusInProgress, nil, func(post *JobPost) error {
		if !post.IsOwnedBy(user.ID) && !post.IsAssignedTo(user.ID) {
			return apperrors.Forbidden("Only the job owner or assigned helper can start this job")
		}
		return nil
	})
}

func (c *JobPostController) Complete(ctx context.Context, user *User, id uuid.UUID) (*JobPost, error) {
	return c.transition(ctx, user, id, JobPostStatusCompleted, nil, func(post *JobPost) error {
		if !post.IsOwnedBy(user.ID) {
			return apperrors.Forbidden("Only the job owner can complete this job")
		}
		return nil
	})
}

func (c *JobPostController) AdminList(
	ctx context.Context,
	filter repositories.JobPostFilter,
) (types.List[*JobPost], error) {
	posts, total, err := c.jobPostRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*JobPost]{}, err
	}
	return types.NewList(posts, filter.Page, total), nil
}

// AdminUpdateStatus lets an admin move a post along the transition table,
// recording an optional note.
func (c *JobPostController) AdminUpdateStatus(
	ctx context.Context,
	admin *User,
	id uuid.UUID,
	request AdminStatusRequest,
) (*JobPost, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	status := JobPostStatus(request.Status)
	if status == JobPostStatusConfirmed {
		return nil, apperrors.Field("status", "Posts are confirmed by accepting an application")
	}

	return c.transition(ctx, admin, id, status, cleanOptional(request.AdminNotes), func(*JobPost) error {
		return nil
	})
}

type rejectedApplication struct {
	id          uuid.UUID
	applicantID uuid.UUID
}

func (c *JobPostController) transition(
	ctx context.Context,
	actor *User,
	id uuid.UUID,
	status JobPostStatus,
	adminNotes *string,
	authorize func(post *JobPost) error,
) (*JobPost, error) {
	log := c.log.TraceFromContext(ctx).Function("transition")

	var (
		previous JobPostStatus
		owner    uuid.UUID
		assigned *uuid.UUID
		rejected []rejectedApplication
	)

	at := c.now()
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		post, err := c.jobPostRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authorize(post); err != nil {
			return err
		}

		previous, owner, assigned = post.Status, post.UserID, post.AssignedUserID
		if err := post.TransitionTo(status, at); err != nil {
			return apperrors.Unprocessable(
				"Cannot move a job from " + statusLabel(previous) + " to " + statusLabel(status),
			)
		}

		updates := map[string]any{"status": post.Status}
		if post.CancelledAt != nil {
			updates["cancelled_at"] = *post.CancelledAt
		}
		if post.CompletedAt != nil {
			updates["completed_at"] = *post.CompletedAt
		}
		if adminNotes != nil {
			updates["admin_notes"] = *adminNotes
		}
		if err := c.jobPostRepo.Update(ctx, tx, id, updates); err != nil {
			return err
		}

		if status != JobPostStatusCancelled {
			return nil
		}

		pending, err := c.applicationRepo.ListPendingByJobPost(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, application := range pending {
			rejected = append(rejected, rejectedApplication{id: application.ID, applicantID: application.ApplicantID})
		}
		return c.applicationRepo.RejectPending(ctx, tx, id, nil, at)
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"jobPostId":      id,
		"status":         status,
		"previousStatus": previous,
	}
	var recipients []uuid.UUID
	if owner != actor.ID {
		recipients = append(recipients, owner)
	}
	if assigned != nil && *assigned != actor.ID {
		recipients = append(recipients, *assigned)
	}
	services.NotifyAll(ctx, c.notifier, recipients, NotificationJobStatusChanged, data)

	for _, application := range rejected {
		if err := c.notifier.Notify(ctx, application.applicantID, NotificationApplicationRejected, map[string]any{
			"jobPostId":     id,
			"applicationId": application.id,
		}); err != nil {
			log.Warn("failed to notify applicant", "error", err, "applicationID", application.id)
		}
	}

	log.Info("job post status changed",
		"jobPostID", id,
		"from", previous,
		"to", status,
		"actorID", actor.ID,
		"rejectedApplications", len(rejected),
	)
	return c.jobPostRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *JobPostController) ensureServiceType(ctx context.Context, id int) error {
	_, err := c.catalogRepo.GetServiceTypeByID(ctx, c.db.SQL, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Field("serviceTypeId", "The selected service type is invalid")
	}
	return err
}

func (c *JobPostController) parseStartDate(value string) (time.Time, error) {
	startDate, err := time.Parse(validation.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Field("startDate", "Must be a date in YYYY-MM-DD format")
	}

	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate.Before(today) {
		return time.Time{}, apperrors.Field("startDate", "The start date cannot be in the past")
	}
	return startDate, nil
}

func validBudget(budget *decimal.Decimal) error {
	if budget != nil && budget.IsNegative() {
		return apperrors.Field("budget", "Must be greater than or equal to 0")
	}
	return nil
}

// redact drops details only parties to the job may see.
func redact(post *JobPost) *JobPost {
	post.Address = nil
	post.AdminNotes = nil
	return post
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

func setOptional(updates map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	if cleaned := cleanOptional(value); cleaned != nil {
		updates[column] = *cleaned
		return
	}
	updates[column] = nil
}

func statusLabel(status JobPostStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}
