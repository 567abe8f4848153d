package handlers

import (
	"context"

	"kamwaalay/internal/app"
	jobApplicationController "kamwaalay/internal/controllers/jobApplication"
	"kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobApplicationHandler struct {
	Handler
	applicationController jobApplicationController.JobApplicationControllerInterface
}

func NewJobApplicationHandler(app app.App, router fiber.Router) *JobApplicationHandler {
	log := logger.New("handlers").File("job_application_handler")
	return &JobApplicationHandler{
		applicationController: app.Controllers.JobApplication,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *JobApplicationHandler) Register() {
	auth := h.middleware.RequireAuth()

	h.router.Post(
		"/job-posts/:id/applications",
		auth,
		h.middleware.RequireRole(models.RoleHelper, models.RoleBusiness),
		h.middleware.RequireOnboarded(),
		h.apply,
	)
	h.router.Get("/job-posts/:id/applications", auth, h.listForPost)

	applications := h.router.Group("/job-applications", auth)
	applications.Get("/mine", h.mine)
	applications.Post("/:id/accept", h.accept)
	applications.Post("/:id/reject", h.reject)
	applications.Post("/:id/withdraw", h.withdraw)
}

func (h *JobApplicationHandler) apply(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	jobPostID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request jobApplicationController.ApplyRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	application, err := h.applicationController.Apply(c.UserContext(), user, jobPostID, request)
	if err != nil {
		return err
	}

	return created(c, fiber.Map{"application": application})
}

func (h *JobApplicationHandler) listForPost(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	jobPostID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	applications, err := h.applicationController.ListForPost(c.UserContext(), user, jobPostID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": applications})
}

func (h *JobApplicationHandler) mine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	applications, err := h.applicationController.Mine(c.UserContext(), user, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(applications)
}

func (h *JobApplicationHandler) accept(c *fiber.Ctx) error {
	return h.respond(c, h.applicationController.Accept)
}

func (h *JobApplicationHandler) reject(c *fiber.Ctx) error {
	return h.respond(c, h.applicationController.Reject)
}

func (h *JobApplicationHandler) withdraw(c *fiber.Ctx) error {
	return h.respond(c, h.applicationController.Withdraw)
}

func (h *JobApplicationHandler) respond(
	c *fiber.Ctx,
	action func(ctx context.Context, user *models.User, id uuid.UUID) (*models.JobApplication, error),
) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	application, err := action(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"application": application})
}
