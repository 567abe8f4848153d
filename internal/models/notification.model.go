package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationApplicationReceived NotificationType = "application_received"
	NotificationApplicationAccepted NotificationType = "application_accepted"
	NotificationApplicationRejected NotificationType = "application_rejected"
	NotificationJobStatusChanged    NotificationType = "job_status_changed"
	NotificationReviewReceived      NotificationType = "review_received"
	NotificationMessageReceived     NotificationType = "message_received"
	NotificationDocumentVerified    NotificationType = "document_verified"
	NotificationDocumentRejected    NotificationType = "document_rejected"
)

type Notification struct {
	BaseUUIDModel
	UserID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"userId"`
	Type   NotificationType `gorm:"type:text;not null"                                   json:"type"`
	Data   datatypes.JSON   `gorm:"type:jsonb"                                           json:"data"`
	ReadAt *time.Time       `gorm:"type:timestamp;index:idx_notifications_user_read"     json:"readAt,omitempty"`
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
