package payment

import (
	"context"
	"time"

	"foodshare/internal/subscription"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	ListByUser(ctx context.Context, userID int64) ([]Transaction, error)
	// InTx runs fn inside one storage transaction, committing when fn
	// returns nil and rolling back otherwise.
	InTx(ctx context.Context, fn func(TxRepository) error) error
}

// TxRepository is the view of storage available inside InTx.
type TxRepository interface {
	// GetByRefForUpdate locks the transaction row until the surrounding
	// transaction ends. Returns apperr.NotFound when absent.
	GetByRefForUpdate(ctx context.Context, ref string) (*Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status Status, now time.Time) error
	GetPlan(ctx context.Context, id int64) (*subscription.Plan, error)
	UpsertSubscription(ctx context.Context, s *subscription.Subscription) error
}
