package handlers

import (
	"kamwaalay/internal/app"
	onboardingController "kamwaalay/internal/controllers/onboarding"
	"kamwaalay/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type OnboardingHandler struct {
	Handler
	onboardingController onboardingController.OnboardingControllerInterface
}

func NewOnboardingHandler(app app.App, router fiber.Router) *OnboardingHandler {
	log := logger.New("handlers").File("onboarding_handler")
	return &OnboardingHandler{
		onboardingController: app.Controllers.Onboarding,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *OnboardingHandler) Register() {
	onboarding := h.router.Group(
		"/onboarding",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.RoleHelper, models.RoleBusiness),
	)
	onboarding.Post("/", h.complete)
	onboarding.Get("/status", h.status)
}

func (h *OnboardingHandler) complete(c *fiber.Ctx) error {
	log := h.log.Function("complete")

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var request onboardingController.CompleteOnboardingRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	result, err := h.onboardingController.Complete(c.UserContext(), user, request)
	if err != nil {
		return err
	}

	log.Info("onboarding completed", "userID", user.ID)
	return created(c, result)
}

func (h *OnboardingHandler) status(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	status, err := h.onboardingController.Status(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(status)
}
