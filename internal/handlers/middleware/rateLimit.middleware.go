package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// OTPRateLimit caps how often a single client can trigger or check a one
// time code.
func (m *Middleware) OTPRateLimit() fiber.Handler {
	limit := m.Config.OTPRequestsPerMinute
	if limit <= 0 {
		limit = 5
	}

	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "otp:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			m.log.TraceFromContext(c.UserContext()).
				Function("OTPRateLimit").
				Warn("otp rate limit reached", "ip", c.IP(), "path", c.Path())
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, try again later")
		},
	})
}
