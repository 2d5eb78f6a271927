package memory

import (
	"context"
	"sort"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/payment"
	"foodshare/internal/subscription"
)

type PaymentRepository struct{ s *Store }

func (r *PaymentRepository) Create(_ context.Context, t *payment.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.transactions {
		if existing.ProviderRef == t.ProviderRef {
			return apperr.Conflict("payment.create", "provider_ref %s already used", t.ProviderRef)
		}
	}
	t.ID = r.s.nextID()
	cp := *t
	r.s.transactions[t.ID] = &cp
	return nil
}

func (r *PaymentRepository) ListByUser(_ context.Context, userID int64) ([]payment.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []payment.Transaction{}
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// InTx runs fn with payment transactions serialised; writes are buffered and
// applied only if fn succeeds.
func (r *PaymentRepository) InTx(_ context.Context, fn func(payment.TxRepository) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	tx := &paymentTx{s: r.s}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type statusWrite struct {
	id     int64
	status payment.Status
	at     time.Time
}

type paymentTx struct {
	s        *Store
	statuses []statusWrite
	subs     []subscription.Subscription
}

func (t *paymentTx) GetByRefForUpdate(_ context.Context, ref string) (*payment.Transaction, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	for _, tr := range t.s.transactions {
		if tr.ProviderRef == ref {
			cp := *tr
			for _, w := range t.statuses {
				if w.id == cp.ID {
					cp.Status = w.status
				}
			}
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("payment.callback", "transaction %s not found", ref)
}

func (t *paymentTx) UpdateStatus(_ context.Context, id int64, status payment.Status, now time.Time) error {
	t.statuses = append(t.statuses, statusWrite{id: id, status: status, at: now})
	return nil
}

func (t *paymentTx) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return (&SubscriptionRepository{s: t.s}).GetPlan(ctx, id)
}

func (t *paymentTx) UpsertSubscription(_ context.Context, sub *subscription.Subscription) error {
	t.subs = append(t.subs, *sub)
	return nil
}

func (t *paymentTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, w := range t.statuses {
		if tr, ok := t.s.transactions[w.id]; ok {
			tr.Status = w.status
			tr.UpdatedAt = w.at
		}
	}
	for _, sub := range t.subs {
		cp := sub
		t.s.subscriptions[sub.UserID] = &cp
	}
}
