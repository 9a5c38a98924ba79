package migration

// Legacy documents as stored by the Mongo-backed ShareHub prototype. Field
// names follow the old collection layout, not the current schema.

type LegacyListing struct {
	ID            string `bson:"id"`
	Title         string `bson:"title"`
	Description   string `bson:"description"`
	Category      string `bson:"category"`
	Campus        string `bson:"campus"`
	ImageURL      string `bson:"imageUrl"`
	CreatedBy     string `bson:"createdBy"`
	CreatedByName string `bson:"createdByName"`
	CreatedAt     string `bson:"createdAt"`
	ExpiresAt     string `bson:"expiresAt"`
	Status        string `bson:"status"`
	ClaimedBy     string `bson:"claimedBy"`
	ClaimedByName string `bson:"claimedByName"`
	ClaimedAt     string `bson:"claimedAt"`
}

type LegacyClaim struct {
	ID        string `bson:"id"`
	ListingID string `bson:"listingId"`
	UserID    string `bson:"userId"`
	UserName  string `bson:"userName"`
	Status    string `bson:"status"`
	CreatedAt string `bson:"createdAt"`
}

type TableStats struct {
	Read     int
	Inserted int
	Skipped  int
}

type MigrationStats struct {
	Listings TableStats
	Claims   TableStats
}
