package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"foodshare/internal/apperr"
	"foodshare/internal/user"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (email, name, password, role, is_verified, created_at)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, u.Email, u.Name, u.Password, u.Role, u.IsVerified).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.Conflict("user.create", "email %s is already registered", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u := &user.User{}
	query := `SELECT id, email, name, password, role, is_verified, created_at FROM users WHERE email = $1`

	if err := r.db.GetContext(ctx, u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user.get", "user %s not found", email)
		}
		return nil, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u := &user.User{}
	query := `SELECT id, email, name, password, role, is_verified, created_at FROM users WHERE id = $1`

	if err := r.db.GetContext(ctx, u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user.get", "user %d not found", id)
		}
		return nil, fmt.Errorf("select user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepository) SetVerified(ctx context.Context, id int64, verified bool) (*user.User, error) {
	u := &user.User{}
	query := `UPDATE users SET is_verified = $2 WHERE id = $1
	          RETURNING id, email, name, password, role, is_verified, created_at`

	if err := r.db.GetContext(ctx, u, query, id, verified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user.verify", "user %d not found", id)
		}
		return nil, fmt.Errorf("update user verification: %w", err)
	}
	return u, nil
}
