package repositories

import (
	"context"
	"strings"
	"time"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobPostFilter struct {
	ServiceTypeID int
	City          string
	WorkType      string
	Status        string
	Page          Page
}

type JobPostRepository interface {
	Create(ctx context.Context, tx *gorm.DB, post *JobPost) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*JobPost, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*JobPost, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	ListOpen(ctx context.Context, tx *gorm.DB, filter JobPostFilter) ([]*JobPost, int64, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, page Page) ([]*JobPost, int64, error)
	List(ctx context.Context, tx *gorm.DB, filter JobPostFilter) ([]*JobPost, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	ListStale(ctx context.Context, tx *gorm.DB, createdBefore, startBefore time.Time) ([]*JobPost, error)
}

type jobPostRepository struct {
	log logger.Logger
}

func NewJobPostRepository() JobPostRepository {
	return &jobPostRepository{
		log: logger.New("jobPostRepository"),
	}
}

func withJobPostRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("ServiceType").Preload("User.Profile").Preload("AssignedUser.Profile")
}

func (r *jobPostRepository) Create(ctx context.Context, tx *gorm.DB, post *JobPost) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return log.Err("failed to create job post", err, "userID", post.UserID)
	}

	return nil
}

func (r *jobPostRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*JobPost, error) {
	log := r.log.Function("GetByID")

	var post JobPost
	if err := withJobPostRelations(tx.WithContext(ctx)).First(&post, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get job post", err, "id", id)
	}

	return &post, nil
}

// GetByIDForUpdate locks the job post row until the surrounding transaction
// ends. Must be called with a transaction handle.
func (r *jobPostRepository) GetByIDForUpdate(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*JobPost, error) {
	log := r.log.Function("GetByIDForUpdate")

	var post JobPost
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&post, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to lock job post", err, "id", id)
	}

	return &post, nil
}

func (r *jobPostRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	updates map[string]any,
) error {
	log := r.log.Function("Update")

	result := tx.WithContext(ctx).Model(&JobPost{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update job post", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ListOpen returns pending posts that helpers can still apply to.
func (r *jobPostRepository) ListOpen(
	ctx context.Context,
	tx *gorm.DB,
	filter JobPostFilter,
) ([]*JobPost, int64, error) {
	filter.Status = string(JobPostStatusPending)
	return r.find(r.filtered(tx.WithContext(ctx), filter), filter.Page, "ListOpen")
}

func (r *jobPostRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	page Page,
) ([]*JobPost, int64, error) {
	query := tx.WithContext(ctx).Model(&JobPost{}).Where("user_id = ?", userID)
	return r.find(query, page, "ListByUser")
}

func (r *jobPostRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter JobPostFilter,
) ([]*JobPost, int64, error) {
	return r.find(r.filtered(tx.WithContext(ctx), filter), filter.Page, "List")
}

func (r *jobPostRepository) filtered(tx *gorm.DB, filter JobPostFilter) *gorm.DB {
	query := tx.Model(&JobPost{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ServiceTypeID != 0 {
		query = query.Where("service_type_id = ?", filter.ServiceTypeID)
	}
	if filter.WorkType != "" {
		query = query.Where("work_type = ?", filter.WorkType)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		query = query.Where("LOWER(city) = ?", strings.ToLower(city))
	}

	return query
}

func (r *jobPostRepository) find(query *gorm.DB, page Page, function string) ([]*JobPost, int64, error) {
	log := r.log.Function(function)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count job posts", err)
	}

	var posts []*JobPost
	if err := withJobPostRelations(query).
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, 0, log.Err("failed to list job posts", err)
	}

	return posts, total, nil
}

func (r *jobPostRepository) CountByStatus(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	log := r.log.Function("CountByStatus")

	var rows []struct {
		Status string
		Count  int64
	}
	if err := tx.WithContext(ctx).
		Model(&JobPost{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, log.Err("failed to count job posts by status", err)
	}

	counts := make(map[string]int64, len(JobPostStatuses))
	for _, status := range JobPostStatuses {
		counts[string(status)] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

// ListStale returns pending posts created before createdBefore whose start
// date is before startBefore.
func (r *jobPostRepository) ListStale(
	ctx context.Context,
	tx *gorm.DB,
	createdBefore, startBefore time.Time,
) ([]*JobPost, error) {
	log := r.log.Function("ListStale")

	var posts []*JobPost
	if err := tx.WithContext(ctx).
		Where("status = ? AND created_at < ? AND start_date < ?",
			JobPostStatusPending, createdBefore, startBefore).
		Order("created_at ASC").
		Find(&posts).Error; err != nil {
		return nil, log.Err("failed to list stale job posts", err)
	}

	return posts, nil
}
