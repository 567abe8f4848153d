package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/models"
	"kamwaalay/internal/services"
	"kamwaalay/internal/testutil"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	app    *fiber.App
	users  *testutil.MemoryUsers
	tokens *services.TokenService
}

func newFixture(t *testing.T, route func(m *Middleware, app *fiber.App)) *fixture {
	db, _ := testutil.NewMockDB(t)

	tokens := services.NewTokenService(config.Config{
		JWTSecret:      "middleware-test-secret",
		JWTExpiryHours: 1,
	}, services.NewMemoryKeyStore())
	users := testutil.NewMemoryUsers()

	m := &Middleware{
		DB:           db,
		userRepo:     users,
		tokenService: tokens,
		log:          logger.New("middleware_test"),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(m.TraceID())
	route(m, app)

	return &fixture{app: app, users: users, tokens: tokens}
}

func (f *fixture) token(t *testing.T, user *models.User) string {
	token, _, err := f.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, path, token string) (*http.Response, apperrors.AppError) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := f.app.Test(req, int(5*time.Second/time.Millisecond))
	require.NoError(t, err)

	var body apperrors.AppError
	if resp.StatusCode >= 400 {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &body))
	}
	return resp, body
}

func protected(m *Middleware, app *fiber.App) {
	app.Get("/me", m.RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendString(GetUser(c).Name)
	})
	app.Get("/helpers-only", m.RequireAuth(), m.RequireRole(models.RoleHelper, models.RoleBusiness), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/admin", m.RequireAuth(), m.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/onboarded", m.RequireAuth(), m.RequireOnboarded(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	f := newFixture(t, protected)
	user := testutil.NewUser("Ayesha", models.RoleUser)
	f.users.Add(user)

	t.Run("valid token", func(t *testing.T) {
		resp, _ := f.do(t, "/me", f.token(t, user))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(TraceIDHeader))
	})

	t.Run("missing token", func(t *testing.T) {
		resp, body := f.do(t, "/me", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, apperrors.CodeUnauthorized, body.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := f.do(t, "/me", "not-a-jwt")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, _ := f.do(t, "/me", f.token(t, testutil.NewUser("Ghost", models.RoleUser)))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.NewUser("Sleeping", models.RoleUser)
		inactive.IsActive = false
		f.users.Add(inactive)

		resp, _ := f.do(t, "/me", f.token(t, inactive))
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	f := newFixture(t, protected)
	user := testutil.NewUser("Ayesha", models.RoleUser)
	helper := testutil.NewUser("Bilal", models.RoleHelper)
	admin := testutil.NewUser("Admin", models.RoleAdmin)
	f.users.Add(user, helper, admin)

	resp, body := f.do(t, "/helpers-only", f.token(t, user))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeForbidden, body.Code)

	resp, _ = f.do(t, "/helpers-only", f.token(t, helper))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, "/admin", f.token(t, helper))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = f.do(t, "/admin", f.token(t, admin))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireOnboarded(t *testing.T) {
	f := newFixture(t, protected)
	helper := testutil.NewUser("Bilal", models.RoleHelper)
	f.users.Add(helper)

	resp, body := f.do(t, "/onboarded", f.token(t, helper))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apperrors.CodeOnboarding, body.Code)

	completed := time.Now()
	helper.OnboardingCompletedAt = &completed
	resp, _ = f.do(t, "/onboarded", f.token(t, helper))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	f := newFixture(t, func(m *Middleware, app *fiber.App) {
		app.Get("/boom", func(c *fiber.Ctx) error {
			return io.ErrUnexpectedEOF
		})
	})

	resp, body := f.do(t, "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, apperrors.CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "EOF")
}

func TestErrorHandler_FiberErrors(t *testing.T) {
	f := newFixture(t, func(m *Middleware, app *fiber.App) {})

	resp, body := f.do(t, "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, body.Code)
}

func TestOTPRateLimit(t *testing.T) {
	f := newFixture(t, func(m *Middleware, app *fiber.App) {
		m.Config.OTPRequestsPerMinute = 2
		app.Get("/otp", m.OTPRateLimit(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
	})

	for range 2 {
		resp, _ := f.do(t, "/otp", "")
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	resp, body := f.do(t, "/otp", "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, apperrors.CodeTooManyRequests, body.Code)
}
