package orchestrator

import (
	"context"

	"foodshare/internal/payment"
	"foodshare/internal/subscription"
	"foodshare/internal/user"
)

func (o *Orchestrator) InitiatePayment(ctx context.Context, userID, planID int64) (*payment.Initiation, error) {
	return invoke(ctx, o, "payment.initiate", userID, func(ctx context.Context, p user.Principal) (*payment.Initiation, error) {
		return o.payments.Initiate(ctx, p, planID)
	})
}

// HandlePaymentCallback is called by the gateway, not by a user.
func (o *Orchestrator) HandlePaymentCallback(ctx context.Context, ref, outcome string) (*payment.CallbackResult, error) {
	return invokeAnonymous(ctx, o, "payment.callback", func(ctx context.Context) (*payment.CallbackResult, error) {
		return o.payments.HandleCallback(ctx, ref, outcome)
	})
}

func (o *Orchestrator) PaymentHistory(ctx context.Context, userID int64) ([]payment.Transaction, error) {
	return invoke(ctx, o, "payment.history", userID, func(ctx context.Context, p user.Principal) ([]payment.Transaction, error) {
		return o.payments.History(ctx, p)
	})
}

func (o *Orchestrator) Subscription(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return invoke(ctx, o, "subscription.get", userID, func(ctx context.Context, p user.Principal) (*subscription.Subscription, error) {
		return o.payments.Subscription(ctx, p)
	})
}

func (o *Orchestrator) Plans(ctx context.Context) ([]subscription.Plan, error) {
	return invokeAnonymous(ctx, o, "plan.list", func(ctx context.Context) ([]subscription.Plan, error) {
		return o.payments.Plans(ctx)
	})
}
