package handlers

import (
	"mime/multipart"
	"strconv"
	"strings"

	"kamwaalay/internal/apperrors"
	"kamwaalay/internal/handlers/middleware"
	"kamwaalay/internal/models"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

// parseBody decodes the JSON body into request. Malformed bodies are a 400;
// field rules are checked by the controllers.
func parseBody(c *fiber.Ctx, request any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(request); err != nil {
		return apperrors.BadRequest("The request body is not valid JSON.")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.NotFound("Resource")
	}
	return id, nil
}

func pageFromQuery(c *fiber.Ctx) repositories.Page {
	return repositories.NewPage(c.QueryInt("page", 1), c.QueryInt("per_page", repositories.DefaultPerPage))
}

func queryInt(c *fiber.Ctx, key string) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return value
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.Field(key, "Must be a number")
	}
	return &value, nil
}

// currentUser returns the authenticated user. Routes using it sit behind
// RequireAuth, so a missing user is reported as unauthenticated.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.GetUser(c)
	if user == nil {
		return nil, apperrors.Unauthorized("Unauthenticated.")
	}
	return user, nil
}

func created(c *fiber.Ctx, body any) error {
	return c.Status(fiber.StatusCreated).JSON(body)
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func message(c *fiber.Ctx, text string) error {
	return c.JSON(fiber.Map{"message": text})
}

func formFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if err != nil || file == nil {
		return nil, apperrors.Field(field, "A file is required")
	}
	return file, nil
}
