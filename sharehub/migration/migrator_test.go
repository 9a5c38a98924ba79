package migration

import (
	"testing"
	"time"

	"github.com/sharehub/sharehub/sharehub/database/models"
)

func TestConvertListing(t *testing.T) {
	m := &Migrator{}

	doc := LegacyListing{
		ID:            "l-1",
		Title:         "Mini fridge",
		Description:   "works fine",
		Category:      "furniture",
		Campus:        "north",
		CreatedBy:     "user-1",
		CreatedByName: "Dana",
		CreatedAt:     "2024-09-01T10:00:00Z",
		ExpiresAt:     "2024-10-01T10:00:00Z",
		Status:        "claimed",
		ClaimedBy:     "user-2",
		ClaimedByName: "Alex",
		ClaimedAt:     "2024-09-05T08:30:00.123Z",
	}

	listing, err := m.convertListing(doc)
	if err != nil {
		t.Fatalf("convertListing() error = %v", err)
	}

	if listing.ID != "l-1" || listing.Title != "Mini fridge" {
		t.Errorf("listing = %+v, fields not carried over", listing)
	}
	if listing.Category != models.CategoryFurniture {
		t.Errorf("category = %q, want furniture", listing.Category)
	}
	if listing.Status != models.ListingStatusClaimed {
		t.Errorf("status = %q, want claimed", listing.Status)
	}
	if listing.CreatedAt != time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) {
		t.Errorf("createdAt = %v", listing.CreatedAt)
	}
	if listing.ClaimedAt == nil {
		t.Fatal("claimedAt not set")
	}
	if listing.ClaimedAt.Nanosecond() != 123000000 {
		t.Errorf("fractional seconds dropped: %v", listing.ClaimedAt)
	}
}

func TestConvertListingNormalization(t *testing.T) {
	m := &Migrator{}

	tests := []struct {
		name         string
		doc          LegacyListing
		wantErr      bool
		wantStatus   models.ListingStatus
		wantCategory models.Category
	}{
		{
			name: "empty status defaults to available",
			doc: LegacyListing{
				ID: "l-1", CreatedAt: "2024-09-01T10:00:00Z", ExpiresAt: "2024-10-01T10:00:00Z",
				Category: "books",
			},
			wantStatus:   models.ListingStatusAvailable,
			wantCategory: models.CategoryBooks,
		},
		{
			name: "persisted expired normalizes to available",
			doc: LegacyListing{
				ID: "l-1", CreatedAt: "2024-09-01T10:00:00Z", ExpiresAt: "2024-10-01T10:00:00Z",
				Category: "books", Status: "expired",
			},
			wantStatus:   models.ListingStatusAvailable,
			wantCategory: models.CategoryBooks,
		},
		{
			name: "unknown category maps to other",
			doc: LegacyListing{
				ID: "l-1", CreatedAt: "2024-09-01T10:00:00Z", ExpiresAt: "2024-10-01T10:00:00Z",
				Category: "misc", Status: "available",
			},
			wantStatus:   models.ListingStatusAvailable,
			wantCategory: models.CategoryOther,
		},
		{
			name: "missing id rejected",
			doc: LegacyListing{
				CreatedAt: "2024-09-01T10:00:00Z", ExpiresAt: "2024-10-01T10:00:00Z",
			},
			wantErr: true,
		},
		{
			name: "garbage timestamp rejected",
			doc: LegacyListing{
				ID: "l-1", CreatedAt: "yesterday", ExpiresAt: "2024-10-01T10:00:00Z",
			},
			wantErr: true,
		},
		{
			name: "unknown status rejected",
			doc: LegacyListing{
				ID: "l-1", CreatedAt: "2024-09-01T10:00:00Z", ExpiresAt: "2024-10-01T10:00:00Z",
				Status: "pending",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing, err := m.convertListing(tt.doc)
			if tt.wantErr {
				if err == nil {
					t.Fatal("convertListing() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("convertListing() error = %v", err)
			}
			if listing.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", listing.Status, tt.wantStatus)
			}
			if listing.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", listing.Category, tt.wantCategory)
			}
		})
	}
}

func TestConvertClaim(t *testing.T) {
	m := &Migrator{}

	claim, err := m.convertClaim(LegacyClaim{
		ID:        "c-1",
		ListingID: "l-1",
		UserID:    "user-2",
		UserName:  "Alex",
		CreatedAt: "2024-09-05T08:30:00Z",
	})
	if err != nil {
		t.Fatalf("convertClaim() error = %v", err)
	}
	if claim.Status != models.ClaimStatusPending {
		t.Errorf("status = %q, want pending default", claim.Status)
	}
	if claim.ListingID != "l-1" || claim.UserID != "user-2" {
		t.Errorf("claim = %+v, fields not carried over", claim)
	}

	if _, err := m.convertClaim(LegacyClaim{ID: "c-1", CreatedAt: "2024-09-05T08:30:00Z"}); err == nil {
		t.Error("convertClaim() without listingId succeeded, want error")
	}
	if _, err := m.convertClaim(LegacyClaim{ListingID: "l-1", CreatedAt: "2024-09-05T08:30:00Z"}); err == nil {
		t.Error("convertClaim() without id succeeded, want error")
	}
}
