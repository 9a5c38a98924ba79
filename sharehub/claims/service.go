// Package claims implements the claim transaction: the guarded state
// transition that moves a listing from available to claimed and records the
// companion claim row.
package claims

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
	"github.com/sharehub/sharehub/sharehub/listings"
	"github.com/sharehub/sharehub/sharehub/logger"
)

const (
	defaultInsertAttempts = 3
	defaultRetryDelay     = 100 * time.Millisecond
)

// ListingStore is the slice of the listing repository the transaction needs:
// a point read and the guarded claim update.
type ListingStore interface {
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	Claim(ctx context.Context, id, userID, userName string, at time.Time) error
}

// ClaimStore persists claim rows.
type ClaimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
}

// Notifier is told about successful claims. Implementations must be
// best-effort; the transaction never fails on notification errors.
type Notifier interface {
	ClaimCreated(ctx context.Context, listing *models.Listing, claim *models.Claim)
}

// Result is the successful outcome: the created claim row and the listing as
// it reads after the transition.
type Result struct {
	Claim   *models.Claim
	Listing *models.Listing
}

type Service struct {
	listings ListingStore
	claims   ClaimStore
	notifier Notifier

	now            func() time.Time
	insertAttempts int
	retryDelay     time.Duration
}

func NewService(listingStore ListingStore, claimStore ClaimStore, notifier Notifier) *Service {
	return &Service{
		listings:       listingStore,
		claims:         claimStore,
		notifier:       notifier,
		now:            time.Now,
		insertAttempts: defaultInsertAttempts,
		retryDelay:     defaultRetryDelay,
	}
}

// Claim executes "claim listing listingID on behalf of userID".
//
// Precondition checks run in a fixed order, each short-circuiting with its
// own rejection. The effect is an ordered pair of writes: the guarded listing
// update first (the authoritative lock), then the claim insert. A claim
// insert that keeps failing after the listing transition landed does not fail
// the call; the missing row is logged for reconciliation.
func (s *Service) Claim(ctx context.Context, listingID, userID, userName string) (*Result, error) {
	if listingID == "" {
		return nil, &Error{Kind: KindInvalidRequest, Message: "listing id is required"}
	}
	if userID == "" {
		return nil, &Error{Kind: KindMissingIdentity, Message: "user id is required (must be authenticated)"}
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			return nil, &Error{Kind: KindNotFound, Message: "listing not found"}
		}
		return nil, &Error{Kind: KindStoreFailure, Message: "failed to load listing", Err: err}
	}

	if listing.Status == models.ListingStatusClaimed && listing.ClaimedBy != "" {
		return nil, &Error{
			Kind:      KindAlreadyClaimed,
			Message:   "listing has already been claimed",
			ClaimedBy: listing.ClaimedBy,
		}
	}

	if listing.CreatedBy == userID {
		return nil, &Error{Kind: KindSelfClaim, Message: "you cannot claim your own listing"}
	}

	now := s.now()
	if listings.EffectiveStatus(listing.Status, listing.ExpiresAt, now) == models.ListingStatusExpired {
		return nil, &Error{Kind: KindExpired, Message: "listing has expired"}
	}

	// Guarded update: succeeds for exactly one caller while the stored status
	// is still available, so the check-then-act window above cannot produce a
	// double claim.
	if err := s.listings.Claim(ctx, listingID, userID, userName, now); err != nil {
		if errors.Is(err, repositories.ErrListingTaken) {
			claimedBy := ""
			if current, readErr := s.listings.GetByID(ctx, listingID); readErr == nil {
				claimedBy = current.ClaimedBy
			}
			return nil, &Error{
				Kind:      KindAlreadyClaimed,
				Message:   "listing has already been claimed",
				ClaimedBy: claimedBy,
			}
		}
		return nil, &Error{Kind: KindStoreFailure, Message: "failed to claim listing", Err: err}
	}

	claim := &models.Claim{
		ID:        uuid.NewString(),
		ListingID: listingID,
		UserID:    userID,
		UserName:  userName,
		Status:    models.ClaimStatusPending,
		CreatedAt: now,
	}

	if err := s.insertClaim(ctx, claim); err != nil {
		// The listing transition is authoritative and already visible to all
		// readers. Surface the missing claim row for reconciliation instead
		// of rolling back.
		logger.LogError("Claim row insert failed after listing transition", err,
			slog.String("listing_id", listingID),
			slog.String("claim_id", claim.ID),
			slog.String("user_id", userID))
	}

	claimed := *listing
	claimed.Status = models.ListingStatusClaimed
	claimed.ClaimedBy = userID
	claimed.ClaimedByName = userName
	claimed.ClaimedAt = &now

	if s.notifier != nil {
		go s.notifier.ClaimCreated(context.WithoutCancel(ctx), &claimed, claim)
	}

	return &Result{Claim: claim, Listing: &claimed}, nil
}

func (s *Service) insertClaim(ctx context.Context, claim *models.Claim) error {
	var err error
	for attempt := 1; attempt <= s.insertAttempts; attempt++ {
		if err = s.claims.Create(ctx, claim); err == nil {
			return nil
		}

		if attempt < s.insertAttempts {
			select {
			case <-ctx.Done():
				return err
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}
	}
	return err
}
