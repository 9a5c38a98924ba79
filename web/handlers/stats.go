package handlers

import (
	"github.com/gofiber/fiber/v2"
	dbmodels "github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
	"github.com/sharehub/sharehub/web/models"
	"github.com/sharehub/sharehub/web/utils"
)

// Stats returns listing counts for the dashboard
func Stats(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		total, err := app.Listings.GetListingCount(ctx, repositories.SearchFilters{})
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		active, err := app.Listings.GetListingCount(ctx, repositories.SearchFilters{
			Status: dbmodels.ListingStatusAvailable,
		})
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		claimed, err := app.Listings.GetListingCount(ctx, repositories.SearchFilters{
			Status: dbmodels.ListingStatusClaimed,
		})
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		categories := make(map[string]int)
		for _, category := range []dbmodels.Category{
			dbmodels.CategoryFood,
			dbmodels.CategoryBooks,
			dbmodels.CategoryElectronics,
			dbmodels.CategoryFurniture,
			dbmodels.CategoryClothing,
			dbmodels.CategoryOther,
		} {
			count, err := app.Listings.GetListingCount(ctx, repositories.SearchFilters{
				Category: category,
			})
			if err != nil {
				return utils.SendInternalError(c, err.Error(), "store")
			}
			categories[string(category)] = count
		}

		return c.JSON(&models.StatsResponse{
			TotalListings:   total,
			ActiveListings:  active,
			ClaimedListings: claimed,
			Categories:      categories,
		})
	}
}
