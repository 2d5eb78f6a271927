package memory

import (
	"context"
	"sort"

	"foodshare/internal/apperr"
	"foodshare/internal/subscription"
)

type SubscriptionRepository struct{ s *Store }

func (r *SubscriptionRepository) GetByUserID(_ context.Context, userID int64) (*subscription.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *SubscriptionRepository) GetPlan(_ context.Context, id int64) (*subscription.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.plans[id]
	if !ok {
		return nil, apperr.NotFound("plan.get", "plan %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *SubscriptionRepository) ListPlans(_ context.Context) ([]subscription.Plan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]subscription.Plan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Price.Cmp(out[j].Price); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
