package memory

import (
	"context"
	"time"

	"foodshare/internal/apperr"
	"foodshare/internal/user"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperr.Conflict("user.create", "email %s is already registered", u.Email)
		}
	}
	u.ID = r.s.nextID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user.get", "user %s not found", email)
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user.get", "user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) SetVerified(_ context.Context, id int64, verified bool) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound("user.verify", "user %d not found", id)
	}
	u.IsVerified = verified
	cp := *u
	return &cp, nil
}
