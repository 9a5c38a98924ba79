package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sharehub/sharehub/sharehub/auth"
	dbmodels "github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
	"github.com/sharehub/sharehub/sharehub/listings"
	"github.com/sharehub/sharehub/sharehub/services"
	"github.com/sharehub/sharehub/web/utils"
)

const defaultListingTTL = 30 * 24 * time.Hour

type listingRequestBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Campus      string `json:"campus"`
	ImageURL    string `json:"imageUrl"`
	ExpiresAt   string `json:"expiresAt"`

	// Legacy fallback identity, honored only when the deployment opts in.
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// ListListings returns listings matching the query filters, newest-first.
// A search term re-ranks the filtered set by fuzzy relevance.
func ListListings(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters := repositories.SearchFilters{
			Campus: c.Query("campus"),
			Limit:  parseIntQuery(c, "limit"),
			Offset: parseIntQuery(c, "offset"),
		}

		if category := c.Query("category"); category != "" {
			if !dbmodels.ValidCategory(dbmodels.Category(category)) {
				return utils.SendBadRequest(c, "unknown category: "+category)
			}
			filters.Category = dbmodels.Category(category)
		}

		now := time.Now()
		statusFilter := dbmodels.ListingStatus(c.Query("status"))

		// Expired is a derived state, never stored, so it has its own query.
		if statusFilter == dbmodels.ListingStatusExpired {
			items, err := app.Listings.GetExpired(c.Context(), now)
			if err != nil {
				return utils.SendInternalError(c, err.Error(), "store")
			}
			listings.ApplyEffectiveStatusAll(items, now)
			return utils.SendItems(c, items, len(items))
		}

		if statusFilter != "" {
			filters.Status = statusFilter
		}

		items, err := app.Listings.Search(c.Context(), filters)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		listings.ApplyEffectiveStatusAll(items, now)

		// A stored-available listing past its expiry reads as expired, so it
		// must not leak into an available-filtered result.
		if statusFilter == dbmodels.ListingStatusAvailable {
			filtered := items[:0]
			for _, l := range items {
				if l.Status == dbmodels.ListingStatusAvailable {
					filtered = append(filtered, l)
				}
			}
			items = filtered
		}

		if query := c.Query("search"); query != "" {
			items = services.RankListings(items, query)
		}

		return utils.SendItems(c, items, len(items))
	}
}

// ExpiredListings returns available-stored listings whose expiry has passed
func ExpiredListings(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		items, err := app.Listings.GetExpired(c.Context(), now)
		if err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		listings.ApplyEffectiveStatusAll(items, now)
		return utils.SendItems(c, items, len(items))
	}
}

// GetListing returns a single listing by id with its effective status
func GetListing(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listing, err := app.Listings.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, repositories.ErrListingNotFound) {
				return utils.SendNotFound(c, "Listing not found")
			}
			return utils.SendInternalError(c, err.Error(), "store")
		}

		listings.ApplyEffectiveStatus(listing, time.Now())
		return c.JSON(listing)
	}
}

// CreateListing creates a new available listing owned by the caller
func CreateListing(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body listingRequestBody
		if err := c.BodyParser(&body); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}

		ident, err := app.Resolver.Resolve(
			c.Get(fiber.HeaderAuthorization),
			auth.Identity{UserID: body.UserID, UserName: body.UserName},
		)
		if err != nil {
			return utils.SendBadRequest(c, "User ID is required (must be authenticated)")
		}

		if body.Title == "" {
			return utils.SendBadRequest(c, "title is required")
		}
		if !dbmodels.ValidCategory(dbmodels.Category(body.Category)) {
			return utils.SendBadRequest(c, "unknown category: "+body.Category)
		}

		now := time.Now()
		expiresAt := now.Add(defaultListingTTL)
		if body.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, body.ExpiresAt)
			if err != nil {
				return utils.SendBadRequest(c, "expiresAt must be RFC 3339")
			}
			expiresAt = parsed
		}

		listing := &dbmodels.Listing{
			ID:            uuid.NewString(),
			Title:         body.Title,
			Description:   body.Description,
			Category:      dbmodels.Category(body.Category),
			Campus:        body.Campus,
			ImageURL:      body.ImageURL,
			CreatedBy:     ident.UserID,
			CreatedByName: ident.UserName,
			CreatedAt:     now,
			ExpiresAt:     expiresAt,
			Status:        dbmodels.ListingStatusAvailable,
		}

		if err := app.Listings.Create(c.Context(), listing); err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		return c.Status(fiber.StatusCreated).JSON(listing)
	}
}

// UpdateListing lets the owner edit listing fields or extend its expiry.
// Claim fields are never writable through this path.
func UpdateListing(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body listingRequestBody
		if err := c.BodyParser(&body); err != nil {
			return utils.SendBadRequest(c, "invalid request body")
		}

		ident, err := app.Resolver.Resolve(
			c.Get(fiber.HeaderAuthorization),
			auth.Identity{UserID: body.UserID, UserName: body.UserName},
		)
		if err != nil {
			return utils.SendBadRequest(c, "User ID is required (must be authenticated)")
		}

		listing, err := app.Listings.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, repositories.ErrListingNotFound) {
				return utils.SendNotFound(c, "Listing not found")
			}
			return utils.SendInternalError(c, err.Error(), "store")
		}

		if listing.CreatedBy != ident.UserID {
			return utils.SendError(c, fiber.StatusForbidden, "Only the owner can edit a listing")
		}

		if body.Title != "" {
			listing.Title = body.Title
		}
		if body.Description != "" {
			listing.Description = body.Description
		}
		if body.Category != "" {
			if !dbmodels.ValidCategory(dbmodels.Category(body.Category)) {
				return utils.SendBadRequest(c, "unknown category: "+body.Category)
			}
			listing.Category = dbmodels.Category(body.Category)
		}
		if body.Campus != "" {
			listing.Campus = body.Campus
		}
		if body.ImageURL != "" {
			listing.ImageURL = body.ImageURL
		}
		if body.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, body.ExpiresAt)
			if err != nil {
				return utils.SendBadRequest(c, "expiresAt must be RFC 3339")
			}
			listing.ExpiresAt = parsed
		}

		if err := app.Listings.Update(c.Context(), listing); err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		listings.ApplyEffectiveStatus(listing, time.Now())
		return c.JSON(listing)
	}
}

// DeleteListing removes an owned listing and, best-effort, its stored image
func DeleteListing(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, err := app.Resolver.Resolve(c.Get(fiber.HeaderAuthorization), auth.Identity{})
		if err != nil {
			return utils.SendBadRequest(c, "User ID is required (must be authenticated)")
		}

		listing, err := app.Listings.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, repositories.ErrListingNotFound) {
				return utils.SendNotFound(c, "Listing not found")
			}
			return utils.SendInternalError(c, err.Error(), "store")
		}

		if listing.CreatedBy != ident.UserID {
			return utils.SendError(c, fiber.StatusForbidden, "Only the owner can delete a listing")
		}

		if err := app.Listings.Delete(c.Context(), listing.ID); err != nil {
			return utils.SendInternalError(c, err.Error(), "store")
		}

		if listing.ImageURL != "" && app.Storage != nil {
			// The row is gone; an orphaned image is not worth failing over.
			if err := app.Storage.DeleteImage(c.Context(), listing.ImageURL); err != nil {
				slog.Warn("Failed to delete listing image",
					slog.String("listing_id", listing.ID),
					slog.String("error", err.Error()))
			}
		}

		return c.JSON(fiber.Map{"message": "Listing deleted"})
	}
}

func parseIntQuery(c *fiber.Ctx, name string) int {
	v := c.Query(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
