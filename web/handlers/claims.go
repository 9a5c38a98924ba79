package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sharehub/sharehub/sharehub/auth"
	"github.com/sharehub/sharehub/sharehub/claims"
	"github.com/sharehub/sharehub/web/models"
	"github.com/sharehub/sharehub/web/utils"
)

type claimRequestBody struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// ClaimListing executes the claim transaction for the listing in the path on
// behalf of the resolved caller
func ClaimListing(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		listingID := c.Params("id")

		// The body is optional; it only matters for the legacy fallback
		// identity, so decode errors are ignored like the credential path.
		var body claimRequestBody
		if len(c.Body()) > 0 {
			_ = c.BodyParser(&body)
		}

		ident, err := app.Resolver.Resolve(
			c.Get(fiber.HeaderAuthorization),
			auth.Identity{UserID: body.UserID, UserName: body.UserName},
		)
		if err != nil && !errors.Is(err, auth.ErrMissingIdentity) {
			return utils.SendInternalError(c, err.Error(), "identity")
		}

		result, err := app.ClaimService.Claim(c.Context(), listingID, ident.UserID, ident.UserName)
		if err != nil {
			return sendClaimError(c, err)
		}

		return c.JSON(&models.ClaimResponse{
			Message: "Listing claimed successfully",
			Claim:   result.Claim,
			Listing: result.Listing,
		})
	}
}

func sendClaimError(c *fiber.Ctx, err error) error {
	var cerr *claims.Error
	if !errors.As(err, &cerr) {
		return utils.SendInternalError(c, err.Error(), "unknown")
	}

	switch cerr.Kind {
	case claims.KindNotFound:
		return utils.SendNotFound(c, cerr.Message)
	case claims.KindAlreadyClaimed:
		return utils.SendAlreadyClaimed(c, cerr.Message, cerr.ClaimedBy)
	case claims.KindInvalidRequest, claims.KindMissingIdentity, claims.KindSelfClaim, claims.KindExpired:
		return utils.SendBadRequest(c, cerr.Message)
	default:
		return utils.SendInternalError(c, cerr.Message, string(cerr.Kind))
	}
}
