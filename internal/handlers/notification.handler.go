package handlers

import (
	"kamwaalay/internal/app"
	notificationController "kamwaalay/internal/controllers/notification"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	Handler
	notificationController notificationController.NotificationControllerInterface
}

func NewNotificationHandler(app app.App, router fiber.Router) *NotificationHandler {
	log := logger.New("handlers").File("notification_handler")
	return &NotificationHandler{
		notificationController: app.Controllers.Notification,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *NotificationHandler) Register() {
	notifications := h.router.Group("/notifications", h.middleware.RequireAuth())
	notifications.Get("/", h.list)
	notifications.Get("/unread-count", h.unreadCount)
	notifications.Post("/read-all", h.markAllRead)
	notifications.Post("/:id/read", h.markRead)
	notifications.Delete("/:id", h.delete)
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	notifications, err := h.notificationController.List(
		c.UserContext(),
		user,
		c.QueryBool("unread_only", false),
		pageFromQuery(c),
	)
	if err != nil {
		return err
	}

	return c.JSON(notifications)
}

func (h *NotificationHandler) unreadCount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.notificationController.UnreadCount(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"count": count})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationController.MarkRead(c.UserContext(), user, id); err != nil {
		return err
	}

	return message(c, "Notification marked as read.")
}

func (h *NotificationHandler) markAllRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.notificationController.MarkAllRead(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"updated": updated})
}

func (h *NotificationHandler) delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notificationController.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	return noContent(c)
}
