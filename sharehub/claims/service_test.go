package claims

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
)

type fakeListingStore struct {
	listings map[string]*models.Listing

	claimErr   error
	claimCalls int
}

func (f *fakeListingStore) GetByID(_ context.Context, id string) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, repositories.ErrListingNotFound
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListingStore) Claim(_ context.Context, id, userID, userName string, at time.Time) error {
	f.claimCalls++
	if f.claimErr != nil {
		return f.claimErr
	}
	l, ok := f.listings[id]
	if !ok || l.Status != models.ListingStatusAvailable {
		return repositories.ErrListingTaken
	}
	l.Status = models.ListingStatusClaimed
	l.ClaimedBy = userID
	l.ClaimedByName = userName
	l.ClaimedAt = &at
	return nil
}

type fakeClaimStore struct {
	created []*models.Claim

	failures int // number of Create calls that fail before one succeeds
	calls    int
}

func (f *fakeClaimStore) Create(_ context.Context, claim *models.Claim) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("insert failed")
	}
	f.created = append(f.created, claim)
	return nil
}

func newTestService(listings *fakeListingStore, claims *fakeClaimStore) *Service {
	s := NewService(listings, claims, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	s.retryDelay = time.Millisecond
	return s
}

func availableListing(id, owner string) *models.Listing {
	return &models.Listing{
		ID:        id,
		Title:     "Mini fridge",
		Category:  models.CategoryFurniture,
		CreatedBy: owner,
		CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.ListingStatusAvailable,
	}
}

func TestClaimSuccess(t *testing.T) {
	listingStore := &fakeListingStore{
		listings: map[string]*models.Listing{
			"l-1": availableListing("l-1", "owner-1"),
		},
	}
	claimStore := &fakeClaimStore{}
	svc := newTestService(listingStore, claimStore)

	result, err := svc.Claim(context.Background(), "l-1", "user-2", "Dana")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}

	if result.Claim == nil || result.Listing == nil {
		t.Fatal("Claim() returned nil claim or listing")
	}
	if result.Claim.ID == "" {
		t.Error("claim id not assigned")
	}
	if result.Claim.ListingID != "l-1" {
		t.Errorf("claim listing id = %q, want l-1", result.Claim.ListingID)
	}
	if result.Claim.UserID != "user-2" || result.Claim.UserName != "Dana" {
		t.Errorf("claim identity = %q/%q, want user-2/Dana", result.Claim.UserID, result.Claim.UserName)
	}
	if result.Claim.Status != models.ClaimStatusPending {
		t.Errorf("claim status = %q, want pending", result.Claim.Status)
	}

	if result.Listing.Status != models.ListingStatusClaimed {
		t.Errorf("listing status = %q, want claimed", result.Listing.Status)
	}
	if result.Listing.ClaimedBy != "user-2" {
		t.Errorf("listing claimedBy = %q, want user-2", result.Listing.ClaimedBy)
	}
	if result.Listing.ClaimedAt == nil {
		t.Error("listing claimedAt not set")
	}

	if len(claimStore.created) != 1 {
		t.Fatalf("claim rows created = %d, want 1", len(claimStore.created))
	}
	stored := listingStore.listings["l-1"]
	if stored.Status != models.ListingStatusClaimed {
		t.Errorf("stored listing status = %q, want claimed", stored.Status)
	}
}

func TestClaimRejections(t *testing.T) {
	claimedAt := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		listingID string
		userID    string
		listing   *models.Listing
		wantKind  Kind
		claimedBy string
	}{
		{
			name:      "empty listing id",
			listingID: "",
			userID:    "user-2",
			wantKind:  KindInvalidRequest,
		},
		{
			name:      "missing identity",
			listingID: "l-1",
			userID:    "",
			listing:   availableListing("l-1", "owner-1"),
			wantKind:  KindMissingIdentity,
		},
		{
			name:      "unknown listing",
			listingID: "l-missing",
			userID:    "user-2",
			wantKind:  KindNotFound,
		},
		{
			name:      "already claimed",
			listingID: "l-1",
			userID:    "user-2",
			listing: &models.Listing{
				ID:        "l-1",
				CreatedBy: "owner-1",
				Status:    models.ListingStatusClaimed,
				ClaimedBy: "user-3",
				ClaimedAt: &claimedAt,
			},
			wantKind:  KindAlreadyClaimed,
			claimedBy: "user-3",
		},
		{
			name:      "self claim",
			listingID: "l-1",
			userID:    "owner-1",
			listing:   availableListing("l-1", "owner-1"),
			wantKind:  KindSelfClaim,
		},
		{
			name:      "expired listing",
			listingID: "l-1",
			userID:    "user-2",
			listing: func() *models.Listing {
				l := availableListing("l-1", "owner-1")
				l.ExpiresAt = time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
				return l
			}(),
			wantKind: KindExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listingStore := &fakeListingStore{listings: map[string]*models.Listing{}}
			if tt.listing != nil {
				listingStore.listings[tt.listing.ID] = tt.listing
			}
			claimStore := &fakeClaimStore{}
			svc := newTestService(listingStore, claimStore)

			_, err := svc.Claim(context.Background(), tt.listingID, tt.userID, "Dana")
			if err == nil {
				t.Fatal("Claim() succeeded, want rejection")
			}

			var claimErr *Error
			if !errors.As(err, &claimErr) {
				t.Fatalf("Claim() error type = %T, want *Error", err)
			}
			if claimErr.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", claimErr.Kind, tt.wantKind)
			}
			if claimErr.ClaimedBy != tt.claimedBy {
				t.Errorf("claimedBy = %q, want %q", claimErr.ClaimedBy, tt.claimedBy)
			}

			// A rejection must not have written anything.
			if listingStore.claimCalls != 0 {
				t.Errorf("listing update attempted %d times, want 0", listingStore.claimCalls)
			}
			if len(claimStore.created) != 0 {
				t.Errorf("claim rows created = %d, want 0", len(claimStore.created))
			}
		})
	}
}

func TestClaimLostRace(t *testing.T) {
	// The point read sees available, but the guarded update loses to a
	// concurrent claimer.
	listing := availableListing("l-1", "owner-1")
	listingStore := &fakeListingStore{
		listings: map[string]*models.Listing{"l-1": listing},
		claimErr: repositories.ErrListingTaken,
	}
	claimStore := &fakeClaimStore{}
	svc := newTestService(listingStore, claimStore)

	// The re-read after losing observes the winner.
	listing.Status = models.ListingStatusClaimed
	listing.ClaimedBy = "user-9"

	_, err := svc.Claim(context.Background(), "l-1", "user-2", "Dana")

	var claimErr *Error
	if !errors.As(err, &claimErr) {
		t.Fatalf("Claim() error = %v, want *Error", err)
	}
	if claimErr.Kind != KindAlreadyClaimed {
		t.Errorf("kind = %q, want %q", claimErr.Kind, KindAlreadyClaimed)
	}
	if claimErr.ClaimedBy != "user-9" {
		t.Errorf("claimedBy = %q, want user-9", claimErr.ClaimedBy)
	}
	if len(claimStore.created) != 0 {
		t.Errorf("claim rows created = %d, want 0", len(claimStore.created))
	}
}

func TestClaimInsertRetries(t *testing.T) {
	listingStore := &fakeListingStore{
		listings: map[string]*models.Listing{
			"l-1": availableListing("l-1", "owner-1"),
		},
	}
	claimStore := &fakeClaimStore{failures: 2}
	svc := newTestService(listingStore, claimStore)

	result, err := svc.Claim(context.Background(), "l-1", "user-2", "Dana")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if claimStore.calls != 3 {
		t.Errorf("Create calls = %d, want 3", claimStore.calls)
	}
	if len(claimStore.created) != 1 {
		t.Errorf("claim rows created = %d, want 1", len(claimStore.created))
	}
	if result.Listing.Status != models.ListingStatusClaimed {
		t.Errorf("listing status = %q, want claimed", result.Listing.Status)
	}
}

func TestClaimInsertFailureStillSucceeds(t *testing.T) {
	// Once the listing transition lands it is authoritative; a claim row that
	// never lands is logged, not rolled back.
	listingStore := &fakeListingStore{
		listings: map[string]*models.Listing{
			"l-1": availableListing("l-1", "owner-1"),
		},
	}
	claimStore := &fakeClaimStore{failures: 100}
	svc := newTestService(listingStore, claimStore)

	result, err := svc.Claim(context.Background(), "l-1", "user-2", "Dana")
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if claimStore.calls != svc.insertAttempts {
		t.Errorf("Create calls = %d, want %d", claimStore.calls, svc.insertAttempts)
	}
	if len(claimStore.created) != 0 {
		t.Errorf("claim rows created = %d, want 0", len(claimStore.created))
	}
	if result.Listing.Status != models.ListingStatusClaimed {
		t.Errorf("listing status = %q, want claimed", result.Listing.Status)
	}
	if listingStore.listings["l-1"].Status != models.ListingStatusClaimed {
		t.Error("stored listing not transitioned")
	}
}

func TestClaimStoreFailureIsRetryable(t *testing.T) {
	listingStore := &fakeListingStore{
		listings: map[string]*models.Listing{
			"l-1": availableListing("l-1", "owner-1"),
		},
		claimErr: errors.New("connection reset"),
	}
	svc := newTestService(listingStore, &fakeClaimStore{})

	_, err := svc.Claim(context.Background(), "l-1", "user-2", "Dana")

	var claimErr *Error
	if !errors.As(err, &claimErr) {
		t.Fatalf("Claim() error = %v, want *Error", err)
	}
	if claimErr.Kind != KindStoreFailure {
		t.Errorf("kind = %q, want %q", claimErr.Kind, KindStoreFailure)
	}
	if !claimErr.Retryable() {
		t.Error("store failure should be retryable")
	}
}
