package handlers

import (
	"kamwaalay/internal/app"
	chatController "kamwaalay/internal/controllers/chat"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	Handler
	chatController chatController.ChatControllerInterface
}

func NewChatHandler(app app.App, router fiber.Router) *ChatHandler {
	log := logger.New("handlers").File("chat_handler")
	return &ChatHandler{
		chatController: app.Controllers.Chat,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ChatHandler) Register() {
	auth := h.middleware.RequireAuth()

	conversations := h.router.Group("/conversations", auth)
	conversations.Get("/", h.conversations)
	conversations.Get("/:id/messages", h.messages)
	conversations.Post("/:id/read", h.markRead)

	h.router.Post("/messages", auth, h.send)
}

func (h *ChatHandler) conversations(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	conversations, err := h.chatController.Conversations(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": conversations})
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request chatController.SendMessageRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	sent, err := h.chatController.Send(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	return created(c, sent)
}

func (h *ChatHandler) messages(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	messages, err := h.chatController.Messages(c.UserContext(), user, id, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(messages)
}

func (h *ChatHandler) markRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	updated, err := h.chatController.MarkRead(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"updated": updated})
}
