package notificationController

import (
	"context"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/database"
	. "kamwaalay/internal/models"
	"kamwaalay/internal/repositories"
	"kamwaalay/internal/services"
	"kamwaalay/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type NotificationControllerInterface interface {
	List(ctx context.Context, user *User, unreadOnly bool, page repositories.Page) (types.List[*Notification], error)
	UnreadCount(ctx context.Context, user *User) (int64, error)
	MarkRead(ctx context.Context, user *User, id uuid.UUID) error
	MarkAllRead(ctx context.Context, user *User) (int64, error)
	Delete(ctx context.Context, user *User, id uuid.UUID) error
}

type NotificationController struct {
	notificationRepo repositories.NotificationRepository
	db               database.DB
	config           config.Config
	now              func() time.Time
	log              logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) NotificationControllerInterface {
	return &NotificationController{
		notificationRepo: repos.Notification,
		db:               db,
		config:           config,
		now:              time.Now,
		log:              logger.New("notificationController"),
	}
}

func (c *NotificationController) List(
	ctx context.Context,
	user *User,
	unreadOnly bool,
	page repositories.Page,
) (types.List[*Notification], error) {
	notifications, total, err := c.notificationRepo.ListByUser(ctx, c.db.SQL, user.ID, unreadOnly, page)
	if err != nil {
		return types.List[*Notification]{}, err
	}
	return types.NewList(notifications, page, total), nil
}

func (c *NotificationController) UnreadCount(ctx context.Context, user *User) (int64, error) {
	return c.notificationRepo.CountUnread(ctx, c.db.SQL, user.ID)
}

func (c *NotificationController) MarkRead(ctx context.Context, user *User, id uuid.UUID) error {
	return c.notificationRepo.MarkRead(ctx, c.db.SQL, user.ID, id, c.now())
}

func (c *NotificationController) MarkAllRead(ctx context.Context, user *User) (int64, error) {
	log := c.log.TraceFromContext(ctx).Function("MarkAllRead")

	count, err := c.notificationRepo.MarkAllRead(ctx, c.db.SQL, user.ID, c.now())
	if err != nil {
		return 0, err
	}

	log.Debug("notifications marked read", "userID", user.ID, "count", count)
	return count, nil
}

func (c *NotificationController) Delete(ctx context.Context, user *User, id uuid.UUID) error {
	return c.notificationRepo.Delete(ctx, c.db.SQL, user.ID, id)
}
