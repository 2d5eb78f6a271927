package subscription

import "context"

// Repository reads plans and subscriptions. Subscriptions are written only
// inside the payment callback transaction.
type Repository interface {
	// GetByUserID returns nil, nil when the user never subscribed.
	GetByUserID(ctx context.Context, userID int64) (*Subscription, error)
	GetPlan(ctx context.Context, id int64) (*Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)
}
