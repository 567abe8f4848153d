package handlers

import (
	"context"
	"strings"

	"kamwaalay/internal/app"
	jobPostController "kamwaalay/internal/controllers/jobPost"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobPostHandler struct {
	Handler
	jobPostController jobPostController.JobPostControllerInterface
}

func NewJobPostHandler(app app.App, router fiber.Router) *JobPostHandler {
	log := logger.New("handlers").File("job_post_handler")
	return &JobPostHandler{
		jobPostController: app.Controllers.JobPost,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *JobPostHandler) Register() {
	posts := h.router.Group("/job-posts", h.middleware.RequireAuth())

	posts.Post("/", h.middleware.RequireRole(models.RoleUser, models.RoleBusiness), h.create)
	posts.Get("/", h.middleware.RequireRole(models.RoleHelper, models.RoleBusiness), h.listOpen)
	posts.Get("/mine", h.mine)
	posts.Get("/:id", h.get)
	posts.Put("/:id", h.update)
	posts.Post("/:id/cancel", h.cancel)
	posts.Post("/:id/start", h.start)
	posts.Post("/:id/complete", h.complete)
}

func jobPostFilter(c *fiber.Ctx) repositories.JobPostFilter {
	return repositories.JobPostFilter{
		ServiceTypeID: queryInt(c, "service_type"),
		City:          strings.TrimSpace(c.Query("city")),
		WorkType:      strings.TrimSpace(c.Query("work_type")),
		Status:        strings.TrimSpace(c.Query("status")),
		Page:          pageFromQuery(c),
	}
}

func (h *JobPostHandler) create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request jobPostController.CreateJobPostRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	post, err := h.jobPostController.Create(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	return created(c, fiber.Map{"jobPost": post})
}

func (h *JobPostHandler) listOpen(c *fiber.Ctx) error {
	posts, err := h.jobPostController.ListOpen(c.UserContext(), jobPostFilter(c))
	if err != nil {
		return err
	}

	return c.JSON(posts)
}

func (h *JobPostHandler) mine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	posts, err := h.jobPostController.Mine(c.UserContext(), user, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(posts)
}

func (h *JobPostHandler) get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	post, err := h.jobPostController.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"jobPost": post})
}

func (h *JobPostHandler) update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request jobPostController.UpdateJobPostRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	post, err := h.jobPostController.Update(c.UserContext(), user, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"jobPost": post})
}

func (h *JobPostHandler) cancel(c *fiber.Ctx) error {
	return h.transition(c, h.jobPostController.Cancel)
}

func (h *JobPostHandler) start(c *fiber.Ctx) error {
	return h.transition(c, h.jobPostController.Start)
}

func (h *JobPostHandler) complete(c *fiber.Ctx) error {
	return h.transition(c, h.jobPostController.Complete)
}

func (h *JobPostHandler) transition(
	c *fiber.Ctx,
	move func(ctx context.Context, user *models.User, id uuid.UUID) (*models.JobPost, error),
) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	post, err := move(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"jobPost": post})
}
