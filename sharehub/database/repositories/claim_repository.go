package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sharehub/sharehub/sharehub/database/models"
	"github.com/uptrace/bun"
)

var ErrClaimNotFound = errors.New("claim not found")

type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	GetByClaimant(ctx context.Context, userID string) ([]*models.Claim, error)
	GetByListing(ctx context.Context, listingID string) ([]*models.Claim, error)
	UpdateStatus(ctx context.Context, id string, status models.ClaimStatus) error
	GetClaimCount(ctx context.Context, userID string) (int, error)
}

type claimRepository struct {
	db *bun.DB
}

func NewClaimRepository(db *bun.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *models.Claim) error {
	_, err := r.db.NewInsert().Model(claim).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	claim := new(models.Claim)
	err := r.db.NewSelect().
		Model(claim).
		Where("id = ?", id).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

func (r *claimRepository) GetByClaimant(ctx context.Context, userID string) ([]*models.Claim, error) {
	var claims []*models.Claim
	err := r.db.NewSelect().
		Model(&claims).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get claims for user: %w", err)
	}
	return claims, nil
}

func (r *claimRepository) GetByListing(ctx context.Context, listingID string) ([]*models.Claim, error) {
	var claims []*models.Claim
	err := r.db.NewSelect().
		Model(&claims).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get claims for listing: %w", err)
	}
	return claims, nil
}

func (r *claimRepository) UpdateStatus(ctx context.Context, id string, status models.ClaimStatus) error {
	res, err := r.db.NewUpdate().
		Model((*models.Claim)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClaimNotFound
	}
	return nil
}

func (r *claimRepository) GetClaimCount(ctx context.Context, userID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Claim)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return count, nil
}
