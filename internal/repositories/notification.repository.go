package repositories

import (
	"context"
	"time"

	. "kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *Notification) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, unreadOnly bool, page Page) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) error
	DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	log logger.Logger
}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	notification *Notification,
) error {
	log := r.log.Function("Create")

	if err := tx.WithContext(ctx).Create(notification).Error; err != nil {
		return log.Err(
			"failed to create notification",
			err,
			"userID", notification.UserID,
			"type", notification.Type,
		)
	}

	return nil
}

func (r *notificationRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	unreadOnly bool,
	page Page,
) ([]*Notification, int64, error) {
	log := r.log.Function("ListByUser")

	query := tx.WithContext(ctx).Model(&Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count notifications", err)
	}

	var notifications []*Notification
	if err := query.
		Scopes(paginate(page)).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, log.Err("failed to list notifications", err, "userID", userID)
	}

	return notifications, total, nil
}

func (r *notificationRepository) CountUnread(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (int64, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, r.log.Function("CountUnread").Err("failed to count notifications", err)
	}
	return count, nil
}

// MarkRead is scoped to the owner so foreign ids look missing.
func (r *notificationRepository) MarkRead(
	ctx context.Context,
	tx *gorm.DB,
	userID, id uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("MarkRead")

	var notification Notification
	if err := tx.WithContext(ctx).
		First(&notification, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return log.Err("failed to get notification", err, "id", id)
	}
	if notification.IsRead() {
		return nil
	}

	if err := tx.WithContext(ctx).
		Model(&notification).
		Update("read_at", at).Error; err != nil {
		return log.Err("failed to mark notification read", err, "id", id)
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	at time.Time,
) (int64, error) {
	log := r.log.Function("MarkAllRead")

	result := tx.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, log.Err("failed to mark notifications read", result.Error, "userID", userID)
	}

	return result.RowsAffected, nil
}

func (r *notificationRepository) Delete(
	ctx context.Context,
	tx *gorm.DB,
	userID, id uuid.UUID,
) error {
	log := r.log.Function("Delete")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&Notification{})
	if result.Error != nil {
		return log.Err("failed to delete notification", result.Error, "id", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *notificationRepository) DeleteReadBefore(
	ctx context.Context,
	tx *gorm.DB,
	cutoff time.Time,
) (int64, error) {
	log := r.log.Function("DeleteReadBefore")

	result := tx.WithContext(ctx).
		Unscoped().
		Where("read_at IS NOT NULL AND read_at < ?", cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, log.Err("failed to prune notifications", result.Error)
	}

	return result.RowsAffected, nil
}
