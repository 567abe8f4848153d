package handlers

import (
	"kamwaalay/internal/app"
	authController "kamwaalay/internal/controllers/auth"
	"kamwaalay/internal/handlers/middleware"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app app.App, router fiber.Router) *AuthHandler {
	log := logger.New("handlers").File("auth_handler")
	return &AuthHandler{
		authController: app.Controllers.Auth,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AuthHandler) Register() {
	auth := h.router.Group("/auth")

	otp := h.middleware.OTPRateLimit()

	auth.Post("/register", otp, h.register)
	auth.Post("/verify-otp", otp, h.verifyOTP)
	auth.Post("/resend-otp", otp, h.resendOTP)
	auth.Post("/login", otp, h.login)
	auth.Post("/login-otp", otp, h.loginOTP)
	auth.Post("/forgot-password", otp, h.forgotPassword)
	auth.Post("/reset-password", otp, h.resetPassword)

	protected := auth.Group("/", h.middleware.RequireAuth())
	protected.Post("/logout", h.logout)
	protected.Get("/me", h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var request authController.RegisterRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.Register(c.UserContext(), request)
	if err != nil {
		return err
	}

	return created(c, response)
}

func (h *AuthHandler) verifyOTP(c *fiber.Ctx) error {
	var request authController.VerifyOTPRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.VerifyOTP(c.UserContext(), request)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandler) resendOTP(c *fiber.Ctx) error {
	var request authController.ResendOTPRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.ResendOTP(c.UserContext(), request)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var request authController.LoginRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.Login(c.UserContext(), request)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandler) loginOTP(c *fiber.Ctx) error {
	var request authController.PhoneRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.LoginOTP(c.UserContext(), request)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var request authController.PhoneRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	response, err := h.authController.ForgotPassword(c.UserContext(), request)
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *AuthHandler) resetPassword(c *fiber.Ctx) error {
	var request authController.ResetPasswordRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	if err := h.authController.ResetPassword(c.UserContext(), request); err != nil {
		return err
	}

	return message(c, "Password has been reset. You can now log in.")
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	log := h.log.Function("logout")

	if err := h.authController.Logout(c.UserContext(), middleware.GetClaims(c)); err != nil {
		return err
	}

	if user := middleware.GetUser(c); user != nil {
		log.Info("user logged out", "userID", user.ID)
	}
	return message(c, "Logged out successfully.")
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	me, err := h.authController.Me(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": me})
}
