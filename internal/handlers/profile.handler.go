package handlers

import (
	"kamwaalay/internal/app"
	profileController "kamwaalay/internal/controllers/profile"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	Handler
	profileController profileController.ProfileControllerInterface
}

func NewProfileHandler(app app.App, router fiber.Router) *ProfileHandler {
	log := logger.New("handlers").File("profile_handler")
	return &ProfileHandler{
		profileController: app.Controllers.Profile,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ProfileHandler) Register() {
	profile := h.router.Group("/profile", h.middleware.RequireAuth())
	profile.Get("/", h.getProfile)
	profile.Put("/", h.updateProfile)
	profile.Post("/photo", h.uploadPhoto)
	profile.Put("/password", h.changePassword)
	profile.Put("/locale", h.updateLocale)

	locales := h.router.Group("/locales")
	locales.Get("/", h.listLocales)
	locales.Get("/:locale", h.translations)
}

func (h *ProfileHandler) getProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := h.profileController.GetProfile(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": profile})
}

func (h *ProfileHandler) updateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request profileController.UpdateProfileRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	updated, err := h.profileController.UpdateProfile(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": updated})
}

func (h *ProfileHandler) uploadPhoto(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	file, err := formFile(c, "photo")
	if err != nil {
		return err
	}

	profile, err := h.profileController.UploadPhoto(c.UserContext(), user, file)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) changePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request profileController.ChangePasswordRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	if err := h.profileController.ChangePassword(c.UserContext(), user, request); err != nil {
		return err
	}

	return message(c, "Password updated.")
}

func (h *ProfileHandler) updateLocale(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request profileController.UpdateLocaleRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	updated, err := h.profileController.UpdateLocale(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": updated})
}

func (h *ProfileHandler) listLocales(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.profileController.Locales()})
}

func (h *ProfileHandler) translations(c *fiber.Ctx) error {
	messages, err := h.profileController.Translations(c.Params("locale"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"locale": c.Params("locale"), "messages": messages})
}
