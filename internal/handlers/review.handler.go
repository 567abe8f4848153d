package handlers

import (
	"kamwaalay/internal/app"
	reviewController "kamwaalay/internal/controllers/review"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	Handler
	reviewController reviewController.ReviewControllerInterface
}

func NewReviewHandler(app app.App, router fiber.Router) *ReviewHandler {
	log := logger.New("handlers").File("review_handler")
	return &ReviewHandler{
		reviewController: app.Controllers.Review,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ReviewHandler) Register() {
	auth := h.middleware.RequireAuth()

	h.router.Post("/job-posts/:id/review", auth, h.create)

	reviews := h.router.Group("/reviews", auth)
	reviews.Put("/:id", h.update)
	reviews.Delete("/:id", h.delete)
}

func (h *ReviewHandler) create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	jobPostID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request reviewController.CreateReviewRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	review, err := h.reviewController.Create(c.UserContext(), user, jobPostID, request)
	if err != nil {
		return err
	}

	return created(c, fiber.Map{"review": review})
}

func (h *ReviewHandler) update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request reviewController.UpdateReviewRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	review, err := h.reviewController.Update(c.UserContext(), user, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"review": review})
}

func (h *ReviewHandler) delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviewController.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	return noContent(c)
}
