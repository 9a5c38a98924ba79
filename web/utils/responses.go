package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sharehub/sharehub/sharehub/auth"
	"github.com/sharehub/sharehub/web/models"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendItems sends a collection response with its count
func SendItems(c *fiber.Ctx, items interface{}, count int) error {
	return SendJSON(c, http.StatusOK, models.NewListResponse(items, count))
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, message string) error {
	return SendJSON(c, statusCode, &models.ErrorResponse{Error: message})
}

// SendBadRequest sends a bad request error response
func SendBadRequest(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusBadRequest, message)
}

// SendNotFound sends a not found error response
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, message)
}

// SendAlreadyClaimed sends the already-claimed rejection carrying the
// existing claimant's id
func SendAlreadyClaimed(c *fiber.Ctx, message, claimedBy string) error {
	return SendJSON(c, http.StatusBadRequest, &models.ErrorResponse{
		Error:     message,
		ClaimedBy: claimedBy,
	})
}

// SendInternalError sends an opaque 500 with an error-kind tag
func SendInternalError(c *fiber.Ctx, message, kind string) error {
	return SendJSON(c, http.StatusInternalServerError, &models.ErrorResponse{
		Error: message,
		Type:  kind,
	})
}

// ExtractIdentity returns the identity placed in the request context by the
// identity middleware, if any
func ExtractIdentity(c *fiber.Ctx) (auth.Identity, bool) {
	ident, ok := c.Locals("identity").(auth.Identity)
	return ident, ok
}

// GetIPAddress extracts the client IP address
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}
