package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"foodshare/internal/apperr"
	"foodshare/internal/listing"
)

const listingColumns = `id, owner_id, title, description, quantity, category, pickup_location,
	status, claimant_id, expires_at, created_at, updated_at`

type PostgresListingRepository struct {
	db *sqlx.DB
}

func NewPostgresListingRepository(db *sqlx.DB) *PostgresListingRepository {
	return &PostgresListingRepository{db: db}
}

func (r *PostgresListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	query := `INSERT INTO listings (owner_id, title, description, quantity, category, pickup_location, status, expires_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		l.OwnerID, l.Title, l.Description, l.Quantity, l.Category, l.PickupLocation,
		l.Status, l.ExpiresAt, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id int64) (*listing.Listing, error) {
	l := &listing.Listing{}
	err := r.db.GetContext(ctx, l, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("listing.get", "listing %d not found", id)
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}
	return l, nil
}

// Claim is a single conditional UPDATE; postgres serialises concurrent
// writers on the row, so at most one caller sees a returned row.
func (r *PostgresListingRepository) Claim(ctx context.Context, id, claimantID int64, now time.Time) (*listing.Listing, bool, error) {
	query := `UPDATE listings SET status = $3, claimant_id = $2, updated_at = $4
	          WHERE id = $1 AND status = $5
	          RETURNING ` + listingColumns

	l := &listing.Listing{}
	err := r.db.GetContext(ctx, l, query, id, claimantID, listing.StatusClaimed, now, listing.StatusAvailable)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("claim listing: %w", err)
	}
	return l, true, nil
}

func (r *PostgresListingRepository) UpdateStatusIf(ctx context.Context, id int64, from, to listing.Status, now time.Time) (*listing.Listing, bool, error) {
	query := `UPDATE listings SET status = $3, updated_at = $4
	          WHERE id = $1 AND status = $2
	          RETURNING ` + listingColumns

	l := &listing.Listing{}
	err := r.db.GetContext(ctx, l, query, id, from, to, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update listing status: %w", err)
	}
	return l, true, nil
}
