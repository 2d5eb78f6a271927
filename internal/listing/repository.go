package listing

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	// GetByID returns apperr.NotFound when the listing does not exist.
	GetByID(ctx context.Context, id int64) (*Listing, error)
	// Claim moves available -> claimed and records the claimant in one
	// indivisible step. ok is false when the listing was not available.
	Claim(ctx context.Context, id, claimantID int64, now time.Time) (l *Listing, ok bool, err error)
	// UpdateStatusIf sets status to `to` only if it currently equals `from`.
	UpdateStatusIf(ctx context.Context, id int64, from, to Status, now time.Time) (l *Listing, ok bool, err error)
}
