package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sharehub/sharehub/sharehub/auth"
)

// OptionalIdentity resolves the bearer credential when one is present and
// stores the identity in the request context. It never rejects: handlers that
// require identity (or accept the body fallback) resolve again themselves.
func OptionalIdentity(resolver auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := resolver.Resolve(c.Get(fiber.HeaderAuthorization), auth.Identity{})
		if err == nil && ident.UserID != "" {
			c.Locals("identity", ident)
			slog.Debug("Request identity resolved",
				slog.String("user_id", ident.UserID),
				slog.String("path", c.Path()))
		}
		return c.Next()
	}
}
