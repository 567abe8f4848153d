package handlers

import (
	"strings"

	"kamwaalay/internal/app"
	catalogController "kamwaalay/internal/controllers/catalog"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Handler
	catalogController catalogController.CatalogControllerInterface
}

func NewCatalogHandler(app app.App, router fiber.Router) *CatalogHandler {
	log := logger.New("handlers").File("catalog_handler")
	return &CatalogHandler{
		catalogController: app.Controllers.Catalog,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *CatalogHandler) Register() {
	h.router.Get("/service-types", h.serviceTypes)
	h.router.Get("/locations", h.locations)
}

func (h *CatalogHandler) serviceTypes(c *fiber.Ctx) error {
	serviceTypes, err := h.catalogController.ServiceTypes(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": serviceTypes})
}

func (h *CatalogHandler) locations(c *fiber.Ctx) error {
	locations, err := h.catalogController.Locations(c.UserContext(), strings.TrimSpace(c.Query("city")))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": locations})
}
