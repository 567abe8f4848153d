package middleware

import (
	"kamwaalay/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through when the user holds any of roles.
// Must run after RequireAuth.
func (m *Middleware) RequireRole(roles ...string) fiber.Handler {
	log := m.log.Function("RequireRole")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return apperrors.Unauthorized("Unauthenticated.")
		}

		if !user.HasRole(roles...) {
			log.Info("role check failed", "userID", user.ID, "required", roles)
			return apperrors.Forbidden("You do not have permission to perform this action.")
		}

		return c.Next()
	}
}

func (m *Middleware) RequireAdmin() fiber.Handler {
	log := m.log.Function("RequireAdmin")

	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return apperrors.Unauthorized("Unauthenticated.")
		}

		if !user.IsAdmin() {
			log.Info("user is not admin", "userID", user.ID)
			return apperrors.Forbidden("Admin access required.")
		}

		return c.Next()
	}
}

// RequireOnboarded blocks helpers and businesses that still have to finish
// onboarding.
func (m *Middleware) RequireOnboarded() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetUser(c)
		if user == nil {
			return apperrors.Unauthorized("Unauthenticated.")
		}

		if user.NeedsOnboarding() {
			return apperrors.Forbidden("Please complete onboarding first.").
				WithCode(apperrors.CodeOnboarding)
		}

		return c.Next()
	}
}
