package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	dbmodels "github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/listings"
	"github.com/sharehub/sharehub/web/models"
	"github.com/sharehub/sharehub/web/utils"
)

// UserListings returns all listings created by the user in the path,
// newest-first
func UserListings(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		if userID == "" {
			return utils.SendBadRequest(c, "userId is required")
		}

		items, err := app.Listings.GetByCreator(c.Context(), userID)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		listings.ApplyEffectiveStatusAll(items, time.Now())

		return utils.SendItems(c, items, len(items))
	}
}

// UserClaims returns all claims made by the user in the path, newest-first,
// each enriched with its referenced listing. Listings that can no longer be
// found are attached as null.
func UserClaims(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		if userID == "" {
			return utils.SendBadRequest(c, "userId is required")
		}

		claims, err := app.Claims.GetByClaimant(c.Context(), userID)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		if len(claims) == 0 {
			return utils.SendItems(c, claims, 0)
		}

		// One batch read for all distinct listing ids in the claim set.
		seen := make(map[string]bool, len(claims))
		ids := make([]string, 0, len(claims))
		for _, claim := range claims {
			if !seen[claim.ListingID] {
				seen[claim.ListingID] = true
				ids = append(ids, claim.ListingID)
			}
		}

		referenced, err := app.Listings.GetByIDs(c.Context(), ids)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		now := time.Now()
		listings.ApplyEffectiveStatusAll(referenced, now)

		byID := make(map[string]*dbmodels.Listing, len(referenced))
		for _, l := range referenced {
			byID[l.ID] = l
		}

		for _, claim := range claims {
			claim.Listing = byID[claim.ListingID]
		}

		return utils.SendItems(c, claims, len(claims))
	}
}

// UserStats summarizes a user's activity for the dashboard
func UserStats(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("userId")
		if userID == "" {
			return utils.SendBadRequest(c, "userId is required")
		}

		owned, err := app.Listings.GetByCreator(c.Context(), userID)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		claimCount, err := app.Claims.GetClaimCount(c.Context(), userID)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		return c.JSON(&models.UserStatsResponse{
			TotalListings: len(owned),
			TotalClaims:   claimCount,
		})
	}
}
