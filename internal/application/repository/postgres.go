package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"foodshare/internal/apperr"
	"foodshare/internal/application"
)

const applicationColumns = `id, listing_id, seeker_id, status, message, beneficiaries_count,
	preferred_pickup_time, created_at, updated_at`

type PostgresApplicationRepository struct {
	db *sqlx.DB
}

func NewPostgresApplicationRepository(db *sqlx.DB) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{db: db}
}

func (r *PostgresApplicationRepository) Create(ctx context.Context, a *application.Application) error {
	query := `INSERT INTO applications (listing_id, seeker_id, status, message, beneficiaries_count, preferred_pickup_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		a.ListingID, a.SeekerID, a.Status, a.Message, a.BeneficiariesCount, a.PreferredPickupTime, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	a := &application.Application{}
	err := r.db.GetContext(ctx, a, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("application.get", "application %d not found", id)
		}
		return nil, fmt.Errorf("select application: %w", err)
	}
	return a, nil
}

func (r *PostgresApplicationRepository) ListByListing(ctx context.Context, listingID int64) ([]application.Application, error) {
	apps := []application.Application{}
	err := r.db.SelectContext(ctx, &apps,
		`SELECT `+applicationColumns+` FROM applications WHERE listing_id = $1 ORDER BY created_at, id`, listingID)
	if err != nil {
		return nil, fmt.Errorf("select applications: %w", err)
	}
	return apps, nil
}

func (r *PostgresApplicationRepository) UpdateStatusIf(ctx context.Context, id int64, from, to application.Status, now time.Time) (*application.Application, bool, error) {
	query := `UPDATE applications SET status = $3, updated_at = $4
	          WHERE id = $1 AND status = $2
	          RETURNING ` + applicationColumns

	a := &application.Application{}
	if err := r.db.GetContext(ctx, a, query, id, from, to, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("update application status: %w", err)
	}
	return a, true, nil
}
