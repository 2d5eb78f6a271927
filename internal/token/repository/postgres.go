package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"foodshare/internal/token"
)

type RefreshTokenRepository struct {
	db *sqlx.DB
}

func NewRefreshTokenRepository(db *sqlx.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, t *token.Token) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		t.UserID, t.Token, t.ExpiresAt, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Consume removes the token and returns it. Concurrent callers with the same
// token race on the DELETE; only one gets the row back.
func (r *RefreshTokenRepository) Consume(ctx context.Context, tokenStr string) (*token.Token, error) {
	t := &token.Token{}
	err := r.db.GetContext(ctx, t,
		`DELETE FROM refresh_tokens WHERE token = $1 RETURNING id, user_id, token, expires_at, created_at`, tokenStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, token.ErrInvalidToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	return t, nil
}
