package repositories

import (
	"context"
	"math"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *Review) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Review, error)
	ExistsForJobPost(ctx context.Context, tx *gorm.DB, jobPostID uuid.UUID) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListByHelper(ctx context.Context, tx *gorm.DB, helperID uuid.UUID, page Page) ([]*Review, int64, error)
	Summary(ctx context.Context, tx *gorm.DB, helperID uuid.UUID) (RatingSummary, error)
	List(ctx context.Context, tx *gorm.DB, page Page) ([]*Review, int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type reviewRepository struct {
	log logger.Logger
}

func NewReviewRepository() ReviewRepository {
	return &reviewRepository{
		log: logger.New("reviewRepository"),
	}
}

func (r *reviewRepository) Create(ctx context.Context, tx *gorm.DB, review *Review) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(review).Error; err != nil {
		return log.Err("failed to create review", err, "jobPostID", review.JobPostID)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Review, error) {
	log := r.log.Function("GetByID")

	var review Review
	if err := tx.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get review", err, "id", id)
	}

	return &review, nil
}

// ExistsForJobPost includes soft-deleted reviews since job_post_id is unique.
func (r *reviewRepository) ExistsForJobPost(
	ctx context.Context,
	tx *gorm.DB,
	jobPostID uuid.UUID,
) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Unscoped().
		Model(&Review{}).
		Where("job_post_id = ?", jobPostID).
		Count(&count).Error; err != nil {
		return false, r.log.Function("ExistsForJobPost").Err("failed to check review", err)
	}
	return count > 0, nil
}

func (r *reviewRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	updates map[string]any,
) error {
	log := r.log.Function("Update")

	result := tx.WithContext(ctx).Model(&Review{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update review", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Delete removes the row so the job post can be reviewed again.
func (r *reviewRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).Unscoped().Delete(&Review{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete review", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *reviewRepository) ListByHelper(
	ctx context.Context,
	tx *gorm.DB,
	helperID uuid.UUID,
	page Page,
) ([]*Review, int64, error) {
	log := r.log.Function("ListByHelper")

	query := tx.WithContext(ctx).Model(&Review{}).Where("helper_id = ?", helperID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count reviews", err)
	}

	var reviews []*Review
	if err := query.
		Preload("Reviewer.Profile").
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, 0, log.Err("failed to list reviews", err, "helperID", helperID)
	}

	return reviews, total, nil
}

func (r *reviewRepository) Summary(
	ctx context.Context,
	tx *gorm.DB,
	helperID uuid.UUID,
) (RatingSummary, error) {
	log := r.log.Function("Summary")

	var row struct {
		Average *float64
		Count   int64
	}
	if err := tx.WithContext(ctx).
		Model(&Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("helper_id = ?", helperID).
		Scan(&row).Error; err != nil {
		return RatingSummary{}, log.Err("failed to summarize reviews", err, "helperID", helperID)
	}

	summary := RatingSummary{Count: row.Count}
	if row.Average != nil {
		summary.Average = math.Round(*row.Average*10) / 10
	}

	return summary, nil
}

func (r *reviewRepository) List(ctx context.Context, tx *gorm.DB, page Page) ([]*Review, int64, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Review{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count reviews", err)
	}

	var reviews []*Review
	if err := query.
		Preload("Reviewer").
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, 0, log.Err("failed to list reviews", err)
	}

	return reviews, total, nil
}

func (r *reviewRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&Review{}).Count(&count).Error; err != nil {
		return 0, r.log.Function("Count").Err("failed to count reviews", err)
	}
	return count, nil
}
