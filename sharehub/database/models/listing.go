package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusClaimed   ListingStatus = "claimed"
	ListingStatusExpired   ListingStatus = "expired"
)

type Category string

const (
	CategoryFood        Category = "food"
	CategoryBooks       Category = "books"
	CategoryElectronics Category = "electronics"
	CategoryFurniture   Category = "furniture"
	CategoryClothing    Category = "clothing"
	CategoryOther       Category = "other"
)

var categories = map[Category]bool{
	CategoryFood:        true,
	CategoryBooks:       true,
	CategoryElectronics: true,
	CategoryFurniture:   true,
	CategoryClothing:    true,
	CategoryOther:       true,
}

// ValidCategory reports whether c is one of the known listing categories.
func ValidCategory(c Category) bool {
	return categories[c]
}

type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID            string        `bun:"id,pk" json:"id"`
	Title         string        `bun:"title,notnull" json:"title"`
	Description   string        `bun:"description" json:"description"`
	Category      Category      `bun:"category,notnull" json:"category"`
	Campus        string        `bun:"campus" json:"campus"`
	ImageURL      string        `bun:"image_url" json:"imageUrl,omitempty"`
	CreatedBy     string        `bun:"created_by,notnull" json:"createdBy"`
	CreatedByName string        `bun:"created_by_name" json:"createdByName"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"createdAt"`
	ExpiresAt     time.Time     `bun:"expires_at,notnull" json:"expiresAt"`
	Status        ListingStatus `bun:"status,notnull" json:"status"`

	// Set exactly once by a successful claim, never cleared.
	ClaimedBy     string     `bun:"claimed_by" json:"claimedBy,omitempty"`
	ClaimedByName string     `bun:"claimed_by_name" json:"claimedByName,omitempty"`
	ClaimedAt     *time.Time `bun:"claimed_at" json:"claimedAt,omitempty"`
}
