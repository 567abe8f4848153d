package handlers

import (
	"strings"

	"kamwaalay/internal/app"
	adminController "kamwaalay/internal/controllers/admin"
	documentController "kamwaalay/internal/controllers/document"
	jobApplicationController "kamwaalay/internal/controllers/jobApplication"
	jobPostController "kamwaalay/internal/controllers/jobPost"
	reviewController "kamwaalay/internal/controllers/review"
	serviceListingController "kamwaalay/internal/controllers/serviceListing"
	"kamwaalay/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Handler
	adminController       adminController.AdminControllerInterface
	documentController    documentController.DocumentControllerInterface
	jobPostController     jobPostController.JobPostControllerInterface
	applicationController jobApplicationController.JobApplicationControllerInterface
	listingController     serviceListingController.ServiceListingControllerInterface
	reviewController      reviewController.ReviewControllerInterface
}

func NewAdminHandler(app app.App, router fiber.Router) *AdminHandler {
	log := logger.New("handlers").File("admin_handler")
	return &AdminHandler{
		adminController:       app.Controllers.Admin,
		documentController:    app.Controllers.Document,
		jobPostController:     app.Controllers.JobPost,
		applicationController: app.Controllers.JobApplication,
		listingController:     app.Controllers.ServiceListing,
		reviewController:      app.Controllers.Review,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *AdminHandler) Register() {
	admin := h.router.Group("/admin", h.middleware.RequireAuth(), h.middleware.RequireAdmin())

	admin.Get("/dashboard", h.dashboard)

	admin.Get("/users", h.listUsers)
	admin.Get("/users/:id", h.getUser)
	admin.Patch("/users/:id/status", h.updateUserStatus)
	admin.Delete("/users/:id", h.deleteUser)

	admin.Get("/documents", h.listDocuments)
	admin.Post("/documents/:id/verify", h.verifyDocument)
	admin.Post("/documents/:id/reject", h.rejectDocument)

	admin.Get("/job-posts", h.listJobPosts)
	admin.Patch("/job-posts/:id/status", h.updateJobPostStatus)
	admin.Get("/job-applications", h.listApplications)

	admin.Get("/service-listings", h.listListings)
	admin.Delete("/service-listings/:id", h.deleteListing)

	admin.Get("/reviews", h.listReviews)
	admin.Delete("/reviews/:id", h.deleteReview)

	admin.Post("/jobs/:name/trigger", h.triggerJob)
}

func (h *AdminHandler) dashboard(c *fiber.Ctx) error {
	dashboard, err := h.adminController.Dashboard(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(dashboard)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.adminController.ListUsers(c.UserContext(), repositories.UserFilter{
		Role:   strings.TrimSpace(c.Query("role")),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   pageFromQuery(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(users)
}

func (h *AdminHandler) getUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.adminController.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *AdminHandler) updateUserStatus(c *fiber.Ctx) error {
	log := h.log.Function("updateUserStatus")

	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request adminController.UpdateUserStatusRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	user, err := h.adminController.UpdateUserStatus(c.UserContext(), admin, id, request)
	if err != nil {
		return err
	}

	log.Info("user status updated", "adminID", admin.ID, "userID", id, "isActive", user.IsActive)
	return c.JSON(fiber.Map{"user": user})
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx) error {
	log := h.log.Function("deleteUser")

	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.adminController.DeleteUser(c.UserContext(), admin, id); err != nil {
		return err
	}

	log.Info("user deleted", "adminID", admin.ID, "userID", id)
	return noContent(c)
}

func (h *AdminHandler) listDocuments(c *fiber.Ctx) error {
	documents, err := h.documentController.AdminList(c.UserContext(), repositories.DocumentFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   pageFromQuery(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(documents)
}

func (h *AdminHandler) verifyDocument(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request documentController.ReviewDocumentRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	document, err := h.documentController.Verify(c.UserContext(), admin, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"document": document})
}

func (h *AdminHandler) rejectDocument(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request documentController.ReviewDocumentRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	document, err := h.documentController.Reject(c.UserContext(), admin, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"document": document})
}

func (h *AdminHandler) listJobPosts(c *fiber.Ctx) error {
	posts, err := h.jobPostController.AdminList(c.UserContext(), jobPostFilter(c))
	if err != nil {
		return err
	}

	return c.JSON(posts)
}

func (h *AdminHandler) updateJobPostStatus(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var request jobPostController.AdminStatusRequest
	if err := parseBody(c, &request); err != nil {
		return err
	}

	post, err := h.jobPostController.AdminUpdateStatus(c.UserContext(), admin, id, request)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"jobPost": post})
}

func (h *AdminHandler) listApplications(c *fiber.Ctx) error {
	applications, err := h.applicationController.AdminList(c.UserContext(), repositories.JobApplicationFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Page:   pageFromQuery(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(applications)
}

func (h *AdminHandler) listListings(c *fiber.Ctx) error {
	filter, err := listingFilter(c)
	if err != nil {
		return err
	}

	listings, err := h.listingController.AdminList(c.UserContext(), filter)
	if err != nil {
		return err
	}

	return c.JSON(listings)
}

func (h *AdminHandler) deleteListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.listingController.AdminDelete(c.UserContext(), id); err != nil {
		return err
	}

	return noContent(c)
}

func (h *AdminHandler) listReviews(c *fiber.Ctx) error {
	reviews, err := h.reviewController.AdminList(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}

	return c.JSON(reviews)
}

func (h *AdminHandler) deleteReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reviewController.AdminDelete(c.UserContext(), id); err != nil {
		return err
	}

	return noContent(c)
}

func (h *AdminHandler) triggerJob(c *fiber.Ctx) error {
	log := h.log.Function("triggerJob")

	name := c.Params("name")
	if err := h.adminController.TriggerJob(c.UserContext(), name); err != nil {
		return err
	}

	log.Info("job triggered", "job", name)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Job triggered.", "job": name})
}
