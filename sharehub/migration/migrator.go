package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sharehub/sharehub/sharehub/database/models"
)

// Migrator imports listings and claims from the Mongo-backed prototype into
// Postgres. Inserts use ON CONFLICT DO NOTHING so reruns are safe.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int

	collNames map[string]string

	stats MigrationStats
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 500,
		collNames: map[string]string{
			"listings": "listings",
			"claims":   "claims",
		},
	}
}

// SetBatchSize overrides the default insert batch size
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides the Mongo collection name for a given kind
func (m *Migrator) SetCollectionName(kind, name string) {
	if kind != "" && name != "" {
		m.collNames[kind] = name
	}
}

func (m *Migrator) Stats() MigrationStats {
	return m.stats
}

// MigrateAll imports listings first, then claims, so claim rows never
// reference a listing that has not landed yet.
func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()
	slog.Info("Starting legacy import",
		slog.String("database", m.mongoDB.Name()),
		slog.Int("batch_size", m.batchSize))

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"listings", m.MigrateListings},
		{"claims", m.MigrateClaims},
	}

	for _, step := range steps {
		slog.Info("Starting migration step", slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		slog.Info("Completed migration step", slog.String("step", step.name))
	}

	slog.Info("Legacy import completed",
		slog.Int("listings_read", m.stats.Listings.Read),
		slog.Int("listings_inserted", m.stats.Listings.Inserted),
		slog.Int("listings_skipped", m.stats.Listings.Skipped),
		slog.Int("claims_read", m.stats.Claims.Read),
		slog.Int("claims_inserted", m.stats.Claims.Inserted),
		slog.Int("claims_skipped", m.stats.Claims.Skipped),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// MigrateListings streams the legacy listings collection into Postgres
func (m *Migrator) MigrateListings(ctx context.Context) error {
	coll := m.mongoDB.Collection(m.collNames["listings"])
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetBatchSize(int32(m.batchSize)))
	if err != nil {
		return fmt.Errorf("failed to query listings: %w", err)
	}
	defer cur.Close(ctx)

	var batch []*models.Listing
	for cur.Next(ctx) {
		var doc LegacyListing
		if err := cur.Decode(&doc); err != nil {
			m.stats.Listings.Skipped++
			slog.Warn("Skipping undecodable listing document", slog.Any("error", err))
			continue
		}
		m.stats.Listings.Read++

		listing, err := m.convertListing(doc)
		if err != nil {
			m.stats.Listings.Skipped++
			slog.Warn("Skipping invalid listing",
				slog.String("id", doc.ID),
				slog.Any("error", err))
			continue
		}

		batch = append(batch, listing)
		if len(batch) >= m.batchSize {
			if err := m.batchInsertListings(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("listings cursor failed: %w", err)
	}
	if len(batch) > 0 {
		if err := m.batchInsertListings(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// MigrateClaims streams the legacy claims collection into Postgres
func (m *Migrator) MigrateClaims(ctx context.Context) error {
	coll := m.mongoDB.Collection(m.collNames["claims"])
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetBatchSize(int32(m.batchSize)))
	if err != nil {
		return fmt.Errorf("failed to query claims: %w", err)
	}
	defer cur.Close(ctx)

	var batch []*models.Claim
	for cur.Next(ctx) {
		var doc LegacyClaim
		if err := cur.Decode(&doc); err != nil {
			m.stats.Claims.Skipped++
			slog.Warn("Skipping undecodable claim document", slog.Any("error", err))
			continue
		}
		m.stats.Claims.Read++

		claim, err := m.convertClaim(doc)
		if err != nil {
			m.stats.Claims.Skipped++
			slog.Warn("Skipping invalid claim",
				slog.String("id", doc.ID),
				slog.Any("error", err))
			continue
		}

		batch = append(batch, claim)
		if len(batch) >= m.batchSize {
			if err := m.batchInsertClaims(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("claims cursor failed: %w", err)
	}
	if len(batch) > 0 {
		if err := m.batchInsertClaims(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) convertListing(doc LegacyListing) (*models.Listing, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("missing id")
	}

	createdAt, err := parseLegacyTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad createdAt %q: %w", doc.CreatedAt, err)
	}
	expiresAt, err := parseLegacyTime(doc.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("bad expiresAt %q: %w", doc.ExpiresAt, err)
	}

	status := models.ListingStatus(doc.Status)
	switch status {
	case models.ListingStatusAvailable, models.ListingStatusClaimed:
	case "":
		status = models.ListingStatusAvailable
	case models.ListingStatusExpired:
		// The prototype briefly persisted derived expiry; normalize it back
		// to the stored state so read-time derivation stays authoritative.
		status = models.ListingStatusAvailable
	default:
		return nil, fmt.Errorf("unknown status %q", doc.Status)
	}

	category := models.Category(doc.Category)
	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}

	listing := &models.Listing{
		ID:            doc.ID,
		Title:         doc.Title,
		Description:   doc.Description,
		Category:      category,
		Campus:        doc.Campus,
		ImageURL:      doc.ImageURL,
		CreatedBy:     doc.CreatedBy,
		CreatedByName: doc.CreatedByName,
		CreatedAt:     createdAt,
		ExpiresAt:     expiresAt,
		Status:        status,
		ClaimedBy:     doc.ClaimedBy,
		ClaimedByName: doc.ClaimedByName,
	}

	if doc.ClaimedAt != "" {
		claimedAt, err := parseLegacyTime(doc.ClaimedAt)
		if err != nil {
			return nil, fmt.Errorf("bad claimedAt %q: %w", doc.ClaimedAt, err)
		}
		listing.ClaimedAt = &claimedAt
	}

	return listing, nil
}

func (m *Migrator) convertClaim(doc LegacyClaim) (*models.Claim, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if doc.ListingID == "" {
		return nil, fmt.Errorf("missing listingId")
	}

	createdAt, err := parseLegacyTime(doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("bad createdAt %q: %w", doc.CreatedAt, err)
	}

	status := models.ClaimStatus(doc.Status)
	switch status {
	case models.ClaimStatusPending, models.ClaimStatusCompleted, models.ClaimStatusCancelled:
	case "":
		status = models.ClaimStatusPending
	default:
		return nil, fmt.Errorf("unknown status %q", doc.Status)
	}

	return &models.Claim{
		ID:        doc.ID,
		ListingID: doc.ListingID,
		UserID:    doc.UserID,
		UserName:  doc.UserName,
		Status:    status,
		CreatedAt: createdAt,
	}, nil
}

func (m *Migrator) batchInsertListings(ctx context.Context, batch []*models.Listing) error {
	start := time.Now()
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert listings batch: %w", err)
	}

	inserted := len(batch)
	if rows, err := res.RowsAffected(); err == nil {
		inserted = int(rows)
	}
	m.stats.Listings.Inserted += inserted
	m.stats.Listings.Skipped += len(batch) - inserted

	slog.Info("Inserted listings batch",
		slog.Int("batch", len(batch)),
		slog.Int("inserted", inserted),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (m *Migrator) batchInsertClaims(ctx context.Context, batch []*models.Claim) error {
	start := time.Now()
	res, err := m.pgDB.NewInsert().
		Model(&batch).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert claims batch: %w", err)
	}

	inserted := len(batch)
	if rows, err := res.RowsAffected(); err == nil {
		inserted = int(rows)
	}
	m.stats.Claims.Inserted += inserted
	m.stats.Claims.Skipped += len(batch) - inserted

	slog.Info("Inserted claims batch",
		slog.Int("batch", len(batch)),
		slog.Int("inserted", inserted),
		slog.Duration("took", time.Since(start)))
	return nil
}

// parseLegacyTime accepts the RFC 3339 strings the prototype wrote, with or
// without fractional seconds.
func parseLegacyTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
