package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"foodshare/internal/apperr"
	"foodshare/internal/payment"
	"foodshare/internal/subscription"
	subscriptionrepository "foodshare/internal/subscription/repository"
)

const transactionColumns = `id, user_id, plan_id, amount, status, provider_ref, created_at, updated_at`

type PostgresPaymentRepository struct {
	db *sqlx.DB
}

func NewPostgresPaymentRepository(db *sqlx.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

func (r *PostgresPaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	query := `INSERT INTO payment_transactions (user_id, plan_id, amount, status, provider_ref, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		t.UserID, t.PlanID, t.Amount, t.Status, t.ProviderRef, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert payment transaction: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) ListByUser(ctx context.Context, userID int64) ([]payment.Transaction, error) {
	txs := []payment.Transaction{}
	err := r.db.SelectContext(ctx, &txs,
		`SELECT `+transactionColumns+` FROM payment_transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select payment transactions: %w", err)
	}
	return txs, nil
}

func (r *PostgresPaymentRepository) InTx(ctx context.Context, fn func(payment.TxRepository) error) error {
	// Начинаем транзакцию
	tx, err := r.beginTransaction(ctx)
	if err != nil {
		return err
	}

	if err := fn(newTxPaymentRepository(tx)); err != nil {
		r.rollback(tx)
		return err
	}
	return r.commit(tx)
}

func (r *PostgresPaymentRepository) beginTransaction(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

func (r *PostgresPaymentRepository) rollback(tx *sqlx.Tx) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

func (r *PostgresPaymentRepository) commit(tx *sqlx.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txPaymentRepository - платежи и подписки в рамках одной транзакции
type txPaymentRepository struct {
	tx   *sqlx.Tx
	subs *subscriptionrepository.TxSubscriptionRepository
}

func newTxPaymentRepository(tx *sqlx.Tx) *txPaymentRepository {
	return &txPaymentRepository{tx: tx, subs: subscriptionrepository.NewTxSubscriptionRepository(tx)}
}

func (r *txPaymentRepository) GetByRefForUpdate(ctx context.Context, ref string) (*payment.Transaction, error) {
	t := &payment.Transaction{}
	err := r.tx.GetContext(ctx, t,
		`SELECT `+transactionColumns+` FROM payment_transactions WHERE provider_ref = $1 FOR UPDATE`, ref)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment.callback", "transaction %s not found", ref)
		}
		return nil, fmt.Errorf("select payment transaction: %w", err)
	}
	return t, nil
}

func (r *txPaymentRepository) UpdateStatus(ctx context.Context, id int64, status payment.Status, now time.Time) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE payment_transactions SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now)
	if err != nil {
		return fmt.Errorf("update payment transaction: %w", err)
	}
	return nil
}

func (r *txPaymentRepository) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return r.subs.GetPlan(ctx, id)
}

func (r *txPaymentRepository) UpsertSubscription(ctx context.Context, s *subscription.Subscription) error {
	return r.subs.Upsert(ctx, s)
}
