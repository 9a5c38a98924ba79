// Package listings holds the read-time lifecycle rules for listings.
//
// Expiry is not a stored transition. A listing whose expiry has passed keeps
// status=available in the store; readers overlay the expired state when they
// render it. A claimed listing stays claimed no matter what the clock says.
package listings

import (
	"time"

	"github.com/sharehub/sharehub/sharehub/database/models"
)

// EffectiveStatus returns the status a reader should see for a listing with
// the given stored status and expiry. Pure and idempotent: recomputed on
// every read, never written back.
func EffectiveStatus(stored models.ListingStatus, expiresAt time.Time, now time.Time) models.ListingStatus {
	if stored == models.ListingStatusAvailable && !expiresAt.IsZero() && now.After(expiresAt) {
		return models.ListingStatusExpired
	}
	return stored
}

// ApplyEffectiveStatus overlays the derived status onto a listing before it
// leaves the read path.
func ApplyEffectiveStatus(l *models.Listing, now time.Time) {
	if l == nil {
		return
	}
	l.Status = EffectiveStatus(l.Status, l.ExpiresAt, now)
}

// ApplyEffectiveStatusAll overlays the derived status onto each listing.
func ApplyEffectiveStatusAll(ls []*models.Listing, now time.Time) {
	for _, l := range ls {
		ApplyEffectiveStatus(l, now)
	}
}
