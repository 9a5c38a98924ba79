package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusCompleted ClaimStatus = "completed"
	ClaimStatusCancelled ClaimStatus = "cancelled"
)

type Claim struct {
	bun.BaseModel `bun:"table:claims,alias:cl"`

	ID        string      `bun:"id,pk" json:"id"`
	ListingID string      `bun:"listing_id,notnull" json:"listingId"`
	UserID    string      `bun:"user_id,notnull" json:"userId"`
	UserName  string      `bun:"user_name" json:"userName"`
	Status    ClaimStatus `bun:"status,notnull" json:"status"`
	CreatedAt time.Time   `bun:"created_at,notnull" json:"createdAt"`

	// Attached on read by the claims lookup; nil when the referenced
	// listing no longer exists.
	Listing *Listing `bun:"-" json:"listing,omitempty"`
}
