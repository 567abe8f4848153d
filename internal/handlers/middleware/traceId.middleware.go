package middleware

import (
	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TraceIDHeader   = "X-Trace-ID"
	TraceIDLocalKey = "traceID"

	maxTraceIDLength = 64
)

// TraceID reuses the caller's trace id when it looks sane and generates one
// otherwise. The id is echoed back and attached to the request context.
func (m *Middleware) TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)
		if traceID == "" || len(traceID) > maxTraceIDLength {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDHeader, traceID)
		c.Locals(TraceIDLocalKey, traceID)
		c.SetUserContext(logger.ContextWithTraceID(c.UserContext(), traceID))

		return c.Next()
	}
}

// GetTraceID retrieves the trace ID from Fiber context
func GetTraceID(c *fiber.Ctx) string {
	if traceID, ok := c.Locals(TraceIDLocalKey).(string); ok {
		return traceID
	}
	return ""
}
