package handlers

import (
	"strings"

	"kamwaalay/internal/app"
	serviceListingController "kamwaalay/internal/controllers/serviceListing"
	"kamwaalay/internal/handlers/middleware"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ServiceListingHandler struct {
	Handler
	listingController serviceListingController.ServiceListingControllerInterface
}

func NewServiceListingHandler(app app.App, router fiber.Router) *ServiceListingHandler {
	log := logger.New("handlers").File("service_listing_handler")
	return &ServiceListingHandler{
		listingController: app.Controllers.ServiceListing,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ServiceListingHandler) Register() {
	listings := h.router.Group("/service-listings")

	provider := []fiber.Handler{
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleHelper, models.RoleBusiness),
		h.middleware.RequireOnboarded(),
	}

	listings.Get("/", h.listPublic)
	listings.Get("/mine", append(provider, h.mine)...)
	listings.Get("/:id", h.middleware.OptionalAuth(), h.get)
	listings.Post("/", append(provider, h.create)...)
	listings.Put("/:id", append(provider, h.update)...)
	listings.Delete("/:id", append(provider, h.delete)...)
}

// listingFilter reads the directory filters shared by the public and admin
// listing searches.
func listingFilter(c *fiber.Ctx) (repositories.ServiceListingFilter, error) {
	minRate, err := queryDecimal(c, "min_rate")
	if err != nil {
		return repositories.ServiceListingFilter{}, err
	}
	maxRate, err := queryDecimal(c, "max_rate")
	if err != nil {
		return repositories.ServiceListingFilter{}, err
	}

	return repositories.ServiceListingFilter{
		ServiceTypeID: queryInt(c, "service_type"),
		City:          strings.TrimSpace(c.Query("city")),
		LocationID:    queryInt(c, "location_id"),
		WorkType:      strings.TrimSpace(c.Query("work_type")),
		MinRate:       minRate,
		MaxRate:       maxRate,
		Status:        strings.TrimSpace(c.Query("status")),
		Page:          pageFromQuery(c),
	}, nil
}

func (h *ServiceListingHandler) listPublic(c *fiber.Ctx) error {
	filter, err := listingFilter(c)
	if err != nil {
		return err
	}

	listings, err := h.listingController.ListPublic(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(listings)
}

func (h *ServiceListingHandler) get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	listing, err := h.listingController.Get(c.UserContext(), middleware.GetUser(c), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ServiceListingHandler) mine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.listingController.Mine(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": listings})
}

func (h *ServiceListingHandler) create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request serviceListingController.CreateListingRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	listing, err := h.listingController.Create(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	return created(c, fiber.Map{"listing": listing})
}

func (h *ServiceListingHandler) update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request serviceListingController.UpdateListingRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	listing, err := h.listingController.Update(c.UserContext(), user, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"listing": listing})
}

func (h *ServiceListingHandler) delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.listingController.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	return noContent(c)
}
