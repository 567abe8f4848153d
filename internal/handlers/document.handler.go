package handlers

import (
	"kamwaalay/internal/app"
	documentController "kamwaalay/internal/controllers/document"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	Handler
	documentController documentController.DocumentControllerInterface
}

func NewDocumentHandler(app app.App, router fiber.Router) *DocumentHandler {
	log := logger.New("handlers").File("document_handler")
	return &DocumentHandler{
		documentController: app.Controllers.Document,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *DocumentHandler) Register() {
	documents := h.router.Group("/documents", h.middleware.RequireAuth())
	documents.Post("/", h.upload)
	documents.Get("/", h.list)
	documents.Get("/:id/file", h.file)
	documents.Delete("/:id", h.delete)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	file, err := formFile(c, "document")
	if err != nil {
		return err
	}

	request := documentController.UploadDocumentRequest{Type: c.FormValue("type")}
	document, err := h.documentController.Upload(c.UserContext(), user, request, file)
	if err != nil {
		return err
	}

	return created(c, fiber.Map{"document": document})
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	documents, err := h.documentController.List(c.UserContext(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": documents})
}

func (h *DocumentHandler) file(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	document, fullPath, err := h.documentController.File(c.UserContext(), user, id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "private, no-store")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+document.OriginalName+`"`)
	return c.SendFile(fullPath)
}

func (h *DocumentHandler) delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.documentController.Delete(c.UserContext(), user, id); err != nil {
		return err
	}

	return noContent(c)
}
