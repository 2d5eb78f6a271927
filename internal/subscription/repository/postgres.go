package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"foodshare/internal/apperr"
	"foodshare/internal/subscription"
)

const (
	selectSubscription = `SELECT user_id, plan_id, end_date, is_active, updated_at FROM subscriptions WHERE user_id = $1`
	selectPlan         = `SELECT id, name, price, duration_days FROM plans WHERE id = $1`
)

type SubscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return getSubscription(ctx, r.db, userID)
}

func (r *SubscriptionRepository) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return getPlan(ctx, r.db, id)
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]subscription.Plan, error) {
	plans := []subscription.Plan{}
	if err := r.db.SelectContext(ctx, &plans, `SELECT id, name, price, duration_days FROM plans ORDER BY price, id`); err != nil {
		return nil, fmt.Errorf("select plans: %w", err)
	}
	return plans, nil
}

// TxSubscriptionRepository - подписки в рамках транзакции платежа
type TxSubscriptionRepository struct {
	tx *sqlx.Tx
}

func NewTxSubscriptionRepository(tx *sqlx.Tx) *TxSubscriptionRepository {
	return &TxSubscriptionRepository{tx: tx}
}

func (r *TxSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	return getSubscription(ctx, r.tx, userID)
}

func (r *TxSubscriptionRepository) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return getPlan(ctx, r.tx, id)
}

// Upsert replaces the user's subscription row.
func (r *TxSubscriptionRepository) Upsert(ctx context.Context, s *subscription.Subscription) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, end_date, is_active, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE
		 SET plan_id = EXCLUDED.plan_id, end_date = EXCLUDED.end_date,
		     is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at`,
		s.UserID, s.PlanID, s.EndDate, s.IsActive, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func getSubscription(ctx context.Context, q sqlx.QueryerContext, userID int64) (*subscription.Subscription, error) {
	sub := &subscription.Subscription{}
	if err := sqlx.GetContext(ctx, q, sub, selectSubscription, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select subscription: %w", err)
	}
	return sub, nil
}

func getPlan(ctx context.Context, q sqlx.QueryerContext, id int64) (*subscription.Plan, error) {
	p := &subscription.Plan{}
	if err := sqlx.GetContext(ctx, q, p, selectPlan, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("plan.get", "plan %d not found", id)
		}
		return nil, fmt.Errorf("select plan: %w", err)
	}
	return p, nil
}
