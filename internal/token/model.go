package token

import (
	"context"
	"time"
)

type Token struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	Save(ctx context.Context, t *Token) error
	// Consume deletes the token and returns what was stored, in one step.
	// It returns ErrInvalidToken when no such token is stored.
	Consume(ctx context.Context, token string) (*Token, error)
}
