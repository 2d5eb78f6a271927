package memory

import (
	"context"

	"foodshare/internal/token"
)

type TokenRepository struct{ s *Store }

func (r *TokenRepository) Save(_ context.Context, t *token.Token) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = r.s.nextID()
	cp := *t
	r.s.tokens[t.Token] = &cp
	return nil
}

func (r *TokenRepository) Consume(_ context.Context, tokenStr string) (*token.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[tokenStr]
	if !ok {
		return nil, token.ErrInvalidToken
	}
	delete(r.s.tokens, tokenStr)
	cp := *t
	return &cp, nil
}
