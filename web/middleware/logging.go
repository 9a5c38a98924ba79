package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sharehub/sharehub/web/utils"
)

// LoggingMiddleware logs HTTP requests in a structured format
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		statusCode := c.Response().StatusCode()

		logLevel := slog.LevelInfo
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		logger := slog.With(
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", statusCode),
			slog.Duration("took", duration),
			slog.String("ip", utils.GetIPAddress(c)),
		)

		if ident, ok := utils.ExtractIdentity(c); ok {
			logger = logger.With(slog.String("user_id", ident.UserID))
		}

		if err != nil {
			logger = logger.With(slog.String("error", err.Error()))
		}

		message := "Request handled"
		if err != nil {
			message = "Request failed"
		}

		logger.Log(c.Context(), logLevel, message)

		return err
	}
}
