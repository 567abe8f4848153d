package services

import (
	"context"
	"encoding/json"

	"kamwaalay/internal/events"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notifier records an in-app notification for a user and pushes it to their
// live connections.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notificationType models.NotificationType, data map[string]any) error
}

type NotificationService struct {
	db        *gorm.DB
	repo      repositories.NotificationRepository
	publisher events.Publisher
	log       logger.Logger
}

func NewNotificationService(
	db *gorm.DB,
	repo repositories.NotificationRepository,
	publisher events.Publisher,
) *NotificationService {
	return &NotificationService{
		db:        db,
		repo:      repo,
		publisher: publisher,
		log:       logger.New("NotificationService"),
	}
}

// Notify stores the notification and publishes it on the notification
// channel. Publish failures are logged only.
func (s *NotificationService) Notify(
	ctx context.Context,
	userID uuid.UUID,
	notificationType models.NotificationType,
	data map[string]any,
) error {
	log := s.log.TraceFromContext(ctx).Function("Notify")

	if data == nil {
		data = map[string]any{}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return log.Err("failed to marshal notification data", err, "type", notificationType)
	}

	notification := &models.Notification{
		UserID: userID,
		Type:   notificationType,
		Data:   datatypes.JSON(payload),
	}
	if err := s.repo.Create(ctx, s.db, notification); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}

	event := events.Event{
		Type:   events.NOTIFICATION,
		UserID: &userID,
		Data: map[string]any{
			"id":        notification.ID,
			"type":      notification.Type,
			"data":      data,
			"createdAt": notification.CreatedAt,
		},
	}
	if err := s.publisher.Publish(events.NOTIFICATION_CHANNEL, event); err != nil {
		log.Warn("failed to publish notification", "error", err, "userID", userID)
	}

	return nil
}

// NotifyAll sends the same notification to every user, logging failures.
func NotifyAll(
	ctx context.Context,
	notifier Notifier,
	userIDs []uuid.UUID,
	notificationType models.NotificationType,
	data map[string]any,
) {
	log := logger.New("NotificationService").TraceFromContext(ctx).Function("NotifyAll")

	for _, userID := range userIDs {
		if err := notifier.Notify(ctx, userID, notificationType, data); err != nil {
			log.Warn("failed to notify user", "error", err, "userID", userID, "type", notificationType)
		}
	}
}
