package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports service and database health
func HealthCheck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if app.DB != nil {
			if err := app.DB.Ping(c.Context()); err != nil {
				dbStatus = "unreachable"
			}
		}

		status := fiber.StatusOK
		if dbStatus != "ok" {
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(fiber.Map{
			"status":   "running",
			"database": dbStatus,
			"version":  app.Version,
			"commit":   app.Commit,
		})
	}
}
