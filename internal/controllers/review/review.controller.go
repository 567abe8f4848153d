package reviewController

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
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	Rating  int     `json:"rating"  validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"  validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

type ReviewControllerInterface interface {
	Create(ctx context.Context, user *User, jobPostID uuid.UUID, request CreateReviewRequest) (*Review, error)
	Update(ctx context.Context, user *User, id uuid.UUID, request UpdateReviewRequest) (*Review, error)
	Delete(ctx context.Context, user *User, id uuid.UUID) error
	AdminList(ctx context.Context, page repositories.Page) (types.List[*Review], error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

type ReviewController struct {
	reviewRepo   repositories.ReviewRepository
	jobPostRepo  repositories.JobPostRepository
	notifier     services.Notifier
	profileCache services.ProfileCache
	db           database.DB
	config       config.Config
	now          func() time.Time
	log          logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ReviewControllerInterface {
	return &ReviewController{
		reviewRepo:   repos.Review,
		jobPostRepo:  repos.JobPost,
		notifier:     services.Notification,
		profileCache: services.ProfileCache,
		db:           db,
		config:       config,
		now:          time.Now,
		log:          logger.New("reviewController"),
	}
}

var errAlreadyReviewed = apperrors.Unprocessable("This job has already been reviewed")

// Create lets the job owner review the assigned helper once the job is
// completed. A job can only carry one review.
func (c *ReviewController) Create(
	ctx context.Context,
	user *User,
	jobPostID uuid.UUID,
	request CreateReviewRequest,
) (*Review, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	post, err := c.jobPostRepo.GetByID(ctx, c.db.SQL, jobPostID)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(user.ID) {
		return nil, apperrors.Forbidden("Only the job owner can leave a review")
	}
	if post.Status != JobPostStatusCompleted || post.AssignedUserID == nil {
		return nil, apperrors.Unprocessable("Only completed jobs can be reviewed")
	}

	exists, err := c.reviewRepo.ExistsForJobPost(ctx, c.db.SQL, jobPostID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errAlreadyReviewed
	}

	review := &Review{
		JobPostID:  jobPostID,
		ReviewerID: user.ID,
		HelperID:   *post.AssignedUserID,
		Rating:     request.Rating,
		Comment:    cleanOptional(request.Comment),
	}
	if err := c.reviewRepo.Create(ctx, c.db.SQL, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyReviewed
		}
		return nil, err
	}

	c.profileCache.Invalidate(ctx, review.HelperID)
	if err := c.notifier.Notify(ctx, review.HelperID, NotificationReviewReceived, map[string]any{
		"jobPostId": jobPostID,
		"reviewId":  review.ID,
		"rating":    review.Rating,
	}); err != nil {
		log.Warn("failed to notify helper", "error", err, "helperID", review.HelperID)
	}

	log.Info("review created", "reviewID", review.ID, "helperID", review.HelperID, "rating", review.Rating)
	return review, nil
}

func (c *ReviewController) Update(
	ctx context.Context,
	user *User,
	id uuid.UUID,
	request UpdateReviewRequest,
) (*Review, error) {
	if err := validation.Struct(request); err != nil {
		return nil, err
	}

	review, err := c.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if request.Rating != nil {
		updates["rating"] = *request.Rating
	}
	if request.Comment != nil {
		if comment := cleanOptional(request.Comment); comment != nil {
			updates["comment"] = *comment
		} else {
			updates["comment"] = nil
		}
	}
	if len(updates) == 0 {
		return review, nil
	}

	if err := c.reviewRepo.Update(ctx, c.db.SQL, id, updates); err != nil {
		return nil, err
	}
	c.profileCache.Invalidate(ctx, review.HelperID)

	return c.reviewRepo.GetByID(ctx, c.db.SQL, id)
}

func (c *ReviewController) Delete(ctx context.Context, user *User, id uuid.UUID) error {
	review, err := c.owned(ctx, user, id)
	if err != nil {
		return err
	}
	return c.remove(ctx, review)
}

func (c *ReviewController) AdminList(
	ctx context.Context,
	page repositories.Page,
) (types.List[*Review], error) {
	reviews, total, err := c.reviewRepo.List(ctx, c.db.SQL, page)
	if err != nil {
		return types.List[*Review]{}, err
	}
	return types.NewList(reviews, page, total), nil
}

func (c *ReviewController) AdminDelete(ctx context.Context, id uuid.UUID) error {
	review, err := c.reviewRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return err
	}
	return c.remove(ctx, review)
}

func (c *ReviewController) owned(ctx context.Context, user *User, id uuid.UUID) (*Review, error) {
	review, err := c.reviewRepo.GetByID(ctx, c.db.SQL, id)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != user.ID {
		return nil, apperrors.Forbidden("You can only change your own reviews")
	}
	return review, nil
}

func (c *ReviewController) remove(ctx context.Context, review *Review) error {
	if err := c.reviewRepo.Delete(ctx, c.db.SQL, review.ID); err != nil {
		return err
	}
	c.profileCache.Invalidate(ctx, review.HelperID)

	c.log.TraceFromContext(ctx).Function("remove").
		Info("review deleted", "reviewID", review.ID, "helperID", review.HelperID)
	return nil
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
