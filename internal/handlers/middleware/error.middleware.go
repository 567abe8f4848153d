package middleware

import (
	"errors"

	"kamwaalay/internal/apperrors"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as the JSON error
// body. Unexpected errors are logged with the request trace id.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(apperrors.New(fiberErr.Code, statusCode(fiberErr.Code), fiberErr.Message))
	}

	appErr := apperrors.From(err)
	if appErr.Status >= fiber.StatusInternalServerError {
		logger.New("middleware").
			TraceFromContext(c.UserContext()).
			Function("ErrorHandler").
			Er("request failed", err, "method", c.Method(), "path", c.Path())
	}

	return c.Status(appErr.Status).JSON(appErr)
}

func statusCode(status int) apperrors.Code {
	switch status {
	case fiber.StatusBadRequest:
		return apperrors.CodeBadRequest
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusUnprocessableEntity:
		return apperrors.CodeUnprocessable
	case fiber.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	}
	if status >= fiber.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return apperrors.CodeBadRequest
}
