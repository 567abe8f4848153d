package handlers

import (
	"strings"

	"kamwaalay/internal/app"
	providerController "kamwaalay/internal/controllers/provider"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ProviderHandler struct {
	Handler
	providerController providerController.ProviderControllerInterface
}

func NewProviderHandler(app app.App, router fiber.Router) *ProviderHandler {
	log := logger.New("handlers").File("provider_handler")
	return &ProviderHandler{
		providerController: app.Controllers.Provider,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ProviderHandler) Register() {
	helpers := h.router.Group("/helpers")
	helpers.Get("/", h.listHelpers)
	helpers.Get("/:id", h.getHelper)
	helpers.Get("/:id/reviews", h.helperReviews)

	businesses := h.router.Group("/businesses")
	businesses.Get("/", h.listBusinesses)
	businesses.Get("/:id", h.getBusiness)

	workers := h.router.Group(
		"/business/workers",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleBusiness),
	)
	workers.Get("/", h.listWorkers)
	workers.Post("/", h.createWorker)
	workers.Put("/:id", h.updateWorker)
	workers.Delete("/:id", h.deleteWorker)
}

func providerFilter(c *fiber.Ctx) repositories.ProviderFilter {
	return repositories.ProviderFilter{
		ServiceTypeID: queryInt(c, "service_type"),
		City:          strings.TrimSpace(c.Query("city")),
		WorkType:      strings.TrimSpace(c.Query("work_type")),
		VerifiedOnly:  c.QueryBool("verified", false),
		Page:          pageFromQuery(c),
	}
}

func (h *ProviderHandler) listHelpers(c *fiber.Ctx) error {
	helpers, err := h.providerController.ListHelpers(c.UserContext(), providerFilter(c))
	if err != nil {
		return err
	}

	return c.JSON(helpers)
}

func (h *ProviderHandler) getHelper(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	helper, err := h.providerController.GetHelper(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"helper": helper})
}

func (h *ProviderHandler) helperReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.providerController.HelperReviews(c.UserContext(), id, pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(reviews)
}

func (h *ProviderHandler) listBusinesses(c *fiber.Ctx) error {
	businesses, err := h.providerController.ListBusinesses(c.UserContext(), providerFilter(c))
	if err != nil {
		return err
	}

	return c.JSON(businesses)
}

func (h *ProviderHandler) getBusiness(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	business, err := h.providerController.GetBusiness(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"business": business})
}

func (h *ProviderHandler) listWorkers(c *fiber.Ctx) error {
	business, err := currentUser(c)
	if err != nil {
		return err
	}

	workers, err := h.providerController.ListWorkers(c.UserContext(), business)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": workers})
}

func (h *ProviderHandler) createWorker(c *fiber.Ctx) error {
	log := h.log.Function("createWorker")

	business, err := currentUser(c)
	if err != nil {
		return err
	}

	var request providerController.CreateWorkerRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	worker, err := h.providerController.CreateWorker(c.UserContext(), business, request)
	if err != nil {
		return err
	}

	log.Info("worker created", "businessID", business.ID, "workerID", worker.ID)
	return created(c, fiber.Map{"worker": worker})
}

func (h *ProviderHandler) updateWorker(c *fiber.Ctx) error {
	business, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request providerController.UpdateWorkerRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	worker, err := h.providerController.UpdateWorker(c.UserContext(), business, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"worker": worker})
}

func (h *ProviderHandler) deleteWorker(c *fiber.Ctx) error {
	business, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.providerController.DeleteWorker(c.UserContext(), business, id); err != nil {
		return err
	}

	return noContent(c)
}
