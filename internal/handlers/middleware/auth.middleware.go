package middleware

import (
	"context"
	"errors"
	"strings"

	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/models"
	"kamwaalay/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthContextKey is used to store auth info in context
type AuthContextKey string

const (
	UserKey        AuthContextKey = "user"
	UserKeyFiber   string         = "User"
	ClaimsKeyFiber string         = "Claims"
)

// RequireAuth validates the bearer token and loads the active user it was
// issued to. Nested groups may stack it, so an already loaded user is kept.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUser(c) != nil {
			return c.Next()
		}

		log := logger.New("middleware").TraceFromContext(c.UserContext()).Function("RequireAuth")

		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			log.Debug("missing or malformed authorization header")
			return apperrors.Unauthorized("Unauthenticated.")
		}

		claims, err := m.tokenService.Parse(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrRevokedToken) {
				log.Debug("token rejected", "error", err.Error())
				return apperrors.Unauthorized("Unauthenticated.")
			}
			return err
		}

		userID, err := claims.UserID()
		if err != nil {
			return apperrors.Unauthorized("Unauthenticated.")
		}

		user, err := m.userRepo.GetByID(c.UserContext(), m.DB.SQL, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("token subject no longer exists", "userID", userID)
			return apperrors.Unauthorized("Unauthenticated.")
		}
		if err != nil {
			return err
		}
		if !user.IsActive {
			log.Info("inactive user rejected", "userID", user.ID)
			return apperrors.Forbidden("Your account has been deactivated.")
		}

		c.Locals(UserKeyFiber, user)
		c.Locals(ClaimsKeyFiber, claims)

		ctx := context.WithValue(c.UserContext(), UserKey, user)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUser extracts user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	user, ok := c.Locals(UserKeyFiber).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func GetClaims(c *fiber.Ctx) *services.Claims {
	claims, ok := c.Locals(ClaimsKeyFiber).(*services.Claims)
	if !ok {
		return nil
	}
	return claims
}

// OptionalAuth attaches the user when a valid bearer token is sent and
// otherwise lets the request through anonymously.
func (m *Middleware) OptionalAuth() fiber.Handler {
	requireAuth := m.RequireAuth()

	return func(c *fiber.Ctx) error {
		if _, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); !ok {
			return c.Next()
		}
		return requireAuth(c)
	}
}
