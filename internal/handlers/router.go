package handlers

import (
	"kamwaalay/internal/app"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Router(router fiber.Router, app *app.App) (err error) {
	setupWebSocketRoute(router, app)

	api := router.Group("/api")
	HealthHandler(api, app.Config, app.Database, app.Services.Scheduler)
	NewAuthHandler(*app, api).Register()
	NewProfileHandler(*app, api).Register()
	NewDocumentHandler(*app, api).Register()
	NewOnboardingHandler(*app, api).Register()
	NewCatalogHandler(*app, api).Register()
	NewServiceListingHandler(*app, api).Register()
	NewProviderHandler(*app, api).Register()
	NewJobPostHandler(*app, api).Register()
	NewJobApplicationHandler(*app, api).Register()
	NewReviewHandler(*app, api).Register()
	NewChatHandler(*app, api).Register()
	NewNotificationHandler(*app, api).Register()
	NewAdminHandler(*app, api).Register()

	return nil
}

func setupWebSocketRoute(router fiber.Router, app *app.App) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws", websocket.New(func(c *websocket.Conn) {
		app.Websocket.HandleWebSocket(c)
	}))
}
