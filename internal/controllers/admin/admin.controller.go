package adminController

import (
	"context"
	"slices"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/constants"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/types"
	"kamwaalay/internal/validation"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type Dashboard struct {
	UsersByRole      map[string]int64 `json:"usersByRole"`
	PendingDocuments int64            `json:"pendingDocuments"`
	JobPostsByStatus map[string]int64 `json:"jobPostsByStatus"`
	Applications     int64            `json:"applications"`
	ServiceListings  int64            `json:"serviceListings"`
	Reviews          int64            `json:"reviews"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// JobTrigger runs a registered background job on demand.
type JobTrigger interface {
	TriggerJobByName(ctx context.Context, jobName string) error
}

type AdminControllerInterface interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ListUsers(ctx context.Context, filter repositories.UserFilter) (types.List[*User], error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUserStatus(ctx context.Context, admin *User, id uuid.UUID, request UpdateUserStatusRequest) (*User, error)
	DeleteUser(ctx context.Context, admin *User, id uuid.UUID) error
	TriggerJob(ctx context.Context, name string) error
}

type AdminController struct {
	userRepo        repositories.UserRepository
	documentRepo    repositories.DocumentRepository
	jobPostRepo     repositories.JobPostRepository
	applicationRepo repositories.JobApplicationRepository
	listingRepo     repositories.ServiceListingRepository
	reviewRepo      repositories.ReviewRepository
	profileCache    services.ProfileCache
	scheduler       JobTrigger
	db              database.DB
	config          config.Config
	log             logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) AdminControllerInterface {
	return &AdminController{
		userRepo:        repos.User,
		documentRepo:    repos.Document,
		jobPostRepo:     repos.JobPost,
		applicationRepo: repos.JobApplication,
		listingRepo:     repos.ServiceListing,
		reviewRepo:      repos.Review,
		profileCache:    services.ProfileCache,
		scheduler:       services.Scheduler,
		db:              db,
		config:          config,
		log:             logger.New("adminController"),
	}
}

func (c *AdminController) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		dashboard Dashboard
		err       error
	)

	if dashboard.UsersByRole, err = c.userRepo.CountByRole(ctx, c.db.SQL); err != nil {
		return nil, err
	}
	if dashboard.PendingDocuments, err = c.documentRepo.CountByStatus(ctx, c.db.SQL, DocumentStatusPending); err != nil {
		return nil, err
	}
	if dashboard.JobPostsByStatus, err = c.jobPostRepo.CountByStatus(ctx, c.db.SQL); err != nil {
		return nil, err
	}
	if dashboard.Applications, err = c.applicationRepo.Count(ctx, c.db.SQL); err != nil {
		return nil, err
	}
	if dashboard.ServiceListings, err = c.listingRepo.Count(ctx, c.db.SQL); err != nil {
		return nil, err
	}
	if dashboard.Reviews, err = c.reviewRepo.Count(ctx, c.db.SQL); err != nil {
		return nil, err
	}

	return &dashboard, nil
}

func (c *AdminController) ListUsers(
	ctx context.Context,
	filter repositories.UserFilter,
) (types.List[*User], error) {
	if filter.Role != "" && !IsValidRole(filter.Role) {
		return types.List[*User]{}, apperrors.Field("role", "The selected role is invalid")
	}

	users, total, err := c.userRepo.List(ctx, c.db.SQL, filter)
	if err != nil {
		return types.List[*User]{}, err
	}
	return types.NewList(users, filter.Page, total), nil
}

func (c *AdminController) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return c.userRepo.GetByID(ctx, c.db.SQL, id)
}

// UpdateUserStatus activates or deactivates an account. Admins cannot change
// their own status.
func (c *AdminController) UpdateUserStatus(
	ctx context.Context,
	admin *User,
	id uuid.UUID,
	request UpdateUserStatusRequest,
) (*User, error) {
	log := c.log.TraceFromContext(ctx).Function("UpdateUserStatus")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}
	if id == admin.ID {
		return nil, apperrors.Unprocessable("You cannot change your own status")
	}

	user, err := c.userRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}

	if err := c.userRepo.Update(ctx, c.db.SQL, id, map[string]any{"is_active": *request.IsActive}); err != nil {
		return nil, err
	}
	if user.IsProvider() {
		c.profileCache.Invalidate(ctx, id)
	}

	log.Info("user status updated", "userID", id, "isActive", *request.IsActive, "adminID", admin.ID)
	return c.userRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *AdminController) DeleteUser(ctx context.Context, admin *User, id uuid.UUID) error {
	log := c.log.TraceFromContext(ctx).Function("DeleteUser")

	if id == admin.ID {
		return apperrors.Unprocessable("You cannot delete your own account")
	}

	if err := c.userRepo.Delete(ctx, c.db.SQL, id); err != nil {
		return err
	}
	c.profileCache.Invalidate(ctx, id)

	log.Info("user deleted", "userID", id, "adminID", admin.ID)
	return nil
}

func (c *AdminController) TriggerJob(ctx context.Context, name string) error {
	if !slices.Contains(constants.JobNames, name) {
		return apperrors.NotFound("Job")
	}
	return c.scheduler.TriggerJobByName(ctx, name)
}
