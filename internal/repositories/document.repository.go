package repositories

import (
	"context"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentFilter struct {
	Status string
	Page   Page
}

type DocumentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, document *Document) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Document, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]Document, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	List(ctx context.Context, tx *gorm.DB, filter DocumentFilter) ([]*Document, int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status DocumentStatus) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ListFilePaths(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type documentRepository struct {
	log logger.Logger
}

func NewDocumentRepository() DocumentRepository {
	return &documentRepository{
		log: logger.New("documentRepository"),
	}
}

func (r *documentRepository) Create(ctx context.Context, tx *gorm.DB, document *Document) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(document).Error; err != nil {
		return log.Err("failed to create document", err, "userID", document.UserID)
	}

	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Document, error) {
	log := r.log.Function("GetByID")

	var document Document
	if err := tx.WithContext(ctx).Preload("User").First(&document, "id = ?", id).Error; err != nil {
		return nil, log.Err("failed to get document", err, "id", id)
	}

	return &document, nil
}

func (r *documentRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]Document, error) {
	log := r.log.Function("ListByUser")

	var documents []Document
	if err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&documents).Error; err != nil {
		return nil, log.Err("failed to list documents", err, "userID", userID)
	}

	return documents, nil
}

func (r *documentRepository) CountByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&Document{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, r.log.Function("CountByUser").Err("failed to count documents", err)
	}
	return count, nil
}

func (r *documentRepository) List(
	ctx context.Context,
	tx *gorm.DB,
	filter DocumentFilter,
) ([]*Document, int64, error) {
	log := r.log.Function("List")

	query := tx.WithContext(ctx).Model(&Document{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count documents", err)
	}

	var documents []*Document
	if err := query.
		Preload("User").
		Scopes(paginate(filter.Page)).
		Order("created_at ASC").
		Find(&documents).Error; err != nil {
		return nil, 0, log.Err("failed to list documents", err)
	}

	return documents, total, nil
}

func (r *documentRepository) CountByStatus(
	ctx context.Context,
	tx *gorm.DB,
	status DocumentStatus,
) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&Document{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, r.log.Function("CountByStatus").Err("failed to count documents", err)
	}
	return count, nil
}

func (r *documentRepository) Update(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	updates map[string]any,
) error {
	log := r.log.Function("Update")

	result := tx.WithContext(ctx).Model(&Document{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update document", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *documentRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).Unscoped().Delete(&Document{}, "id = ?", id)
	if result.Error != nil {
		return log.Err("failed to delete document", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *documentRepository) ListFilePaths(ctx context.Context, tx *gorm.DB) ([]string, error) {
	log := r.log.Function("ListFilePaths")

	var paths []string
	if err := tx.WithContext(ctx).
		Model(&Document{}).
		Unscoped().
		Pluck("file_path", &paths).Error; err != nil {
		return nil, log.Err("failed to list document paths", err)
	}

	return paths, nil
}
