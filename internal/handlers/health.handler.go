package handlers

import (
	"context"
	"time"

	"kamwaalay/config"
	"kamwaalay/internal/database"

	"github.com/gofiber/fiber/v2"
)

const healthCheckTimeout = 2 * time.Second

type schedulerStatus interface {
	IsRunning() bool
	GetJobCount() int
}

func HealthHandler(router fiber.Router, config config.Config, db database.DB, scheduler schedulerStatus) {
	router.Get("/health", func(c *fiber.Ctx) error {
		status, code := "ok", fiber.StatusOK
		if err := pingDatabase(c.UserContext(), db); err != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}

		body := fiber.Map{
			"status":  status,
			"version": config.GeneralVersion,
			"service": "kamwaalay_api",
		}
		if scheduler != nil {
			body["scheduler"] = fiber.Map{
				"running": scheduler.IsRunning(),
				"jobs":    scheduler.GetJobCount(),
			}
		}

		return c.Status(code).JSON(body)
	})
}

func pingDatabase(ctx context.Context, db database.DB) error {
	if db.SQL == nil {
		return context.Canceled
	}

	sqlDB, err := db.SQL.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
