package token_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/storage/memory"
	"foodshare/internal/token"
)

func TestRotate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := token.NewService(memory.New().Tokens()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	first, err := svc.Issue(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, first.Token, 64)
	assert.Equal(t, now.Add(token.RefreshTTL), first.ExpiresAt)

	second, err := svc.Rotate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), second.UserID)
	assert.NotEqual(t, first.Token, second.Token)

	// single use
	_, err = svc.Rotate(ctx, first.Token)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRotate_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := token.NewService(memory.New().Tokens()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	tok, err := svc.Issue(ctx, 1)
	require.NoError(t, err)

	now = now.Add(token.RefreshTTL + time.Minute)
	_, err = svc.Rotate(ctx, tok.Token)
	assert.ErrorIs(t, err, token.ErrExpiredToken)

	// an expired token is still consumed
	_, err = svc.Rotate(ctx, tok.Token)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRotate_ConcurrentSingleWinner(t *testing.T) {
	svc := token.NewService(memory.New().Tokens())
	ctx := context.Background()

	tok, err := svc.Issue(ctx, 7)
	require.NoError(t, err)

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		issued  []string
		invalid int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			next, err := svc.Rotate(ctx, tok.Token)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, token.ErrInvalidToken)
				invalid++
				return
			}
			issued = append(issued, next.Token)
		}()
	}
	close(start)
	wg.Wait()

	assert.Len(t, issued, 1)
	assert.Equal(t, n-1, invalid)
}
