package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrListingNotFound = errors.New("listing not found")

	// ErrListingTaken is returned by Claim when the guarded update matched no
	// row: the listing was claimed (or removed) between the caller's read and
	// the write.
	ErrListingTaken = errors.New("listing no longer available")
)

// SearchFilters narrows a listing search. Zero values mean "no filter".
type SearchFilters struct {
	Category models.Category
	Campus   string
	Status   models.ListingStatus
	Limit    int
	Offset   int
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Listing, error)
	GetByCreator(ctx context.Context, userID string) ([]*models.Listing, error)
	Search(ctx context.Context, filters SearchFilters) ([]*models.Listing, error)
	GetExpired(ctx context.Context, now time.Time) ([]*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id string) error
	Claim(ctx context.Context, id, userID, userName string, at time.Time) error
	GetListingCount(ctx context.Context, filters SearchFilters) (int, error)
}

type listingRepository struct {
	db *bun.DB
}

func NewListingRepository(db *bun.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	_, err := r.db.NewInsert().Model(listing).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	listing := new(models.Listing)
	err := r.db.NewSelect().
		Model(listing).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Listing, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get listings by ids: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) GetByCreator(ctx context.Context, userID string) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get listings for creator: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) Search(ctx context.Context, filters SearchFilters) ([]*models.Listing, error) {
	var listings []*models.Listing
	q := r.db.NewSelect().Model(&listings)

	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.Campus != "" {
		q = q.Where("campus = ?", filters.Campus)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Limit > 0 {
		q = q.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		q = q.Offset(filters.Offset)
	}

	err := q.Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	return listings, nil
}

// GetExpired returns listings still stored as available whose expiry has
// passed. Stored status is never rewritten to expired; this is the scan
// counterpart of the read-time derivation.
func (r *listingRepository) GetExpired(ctx context.Context, now time.Time) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("status = ?", models.ListingStatusAvailable).
		Where("expires_at < ?", now).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get expired listings: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	res, err := r.db.NewUpdate().
		Model(listing).
		Column("title", "description", "category", "campus", "image_url", "expires_at").
		Where("id = ?", listing.ID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.Listing)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

// Claim transitions a listing to claimed with a guarded update: the write only
// applies while the stored status is still available, so concurrent claimers
// serialize on the row and exactly one wins. Losers get ErrListingTaken.
func (r *listingRepository) Claim(ctx context.Context, id, userID, userName string, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*models.Listing)(nil)).
		Set("status = ?", models.ListingStatusClaimed).
		Set("claimed_by = ?", userID).
		Set("claimed_by_name = ?", userName).
		Set("claimed_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.ListingStatusAvailable).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to claim listing: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingTaken
	}
	return nil
}

func (r *listingRepository) GetListingCount(ctx context.Context, filters SearchFilters) (int, error) {
	q := r.db.NewSelect().Model((*models.Listing)(nil))

	if filters.Category != "" {
		q = q.Where("category = ?", filters.Category)
	}
	if filters.Campus != "" {
		q = q.Where("campus = ?", filters.Campus)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
