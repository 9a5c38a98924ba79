package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/sharehub/sharehub/sharehub/auth"
	"github.com/sharehub/sharehub/web/models"
	"github.com/sharehub/sharehub/web/utils"
)

const maxImageSize = 10 * 1024 * 1024

// UploadImage stores a listing image and returns its public URL
func UploadImage(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := app.Resolver.Resolve(c.Get(fiber.HeaderAuthorization), auth.Identity{}); err != nil {
			return utils.SendBadRequest(c, "User ID is required (must be authenticated)")
		}

		if app.Storage == nil {
			return utils.SendInternalError(c, "image storage is not configured", "storage")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return utils.SendBadRequest(c, "file is required")
		}

		if fileHeader.Size > maxImageSize {
			return utils.SendBadRequest(c, "file too large (max 10MB)")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "upload")
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "upload")
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		url, err := app.Storage.UploadListingImage(c.Context(), data, fileHeader.Filename, contentType)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "upload")
		}

		return c.JSON(&models.UploadResponse{URL: url})
	}
}
