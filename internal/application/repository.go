package application

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	ListByListing(ctx context.Context, listingID int64) ([]Application, error)
	// UpdateStatusIf is a compare-and-set on status; ok is false when the
	// current status is not `from`.
	UpdateStatusIf(ctx context.Context, id int64, from, to Status, now time.Time) (a *Application, ok bool, err error)
}
