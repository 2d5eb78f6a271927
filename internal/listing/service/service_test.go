package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/apperr"
	"foodshare/internal/authz"
	"foodshare/internal/listing"
	"foodshare/internal/storage/memory"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

var (
	donor    = user.Principal{ID: 1, Role: user.RoleDonor}
	receiver = user.Principal{ID: 2, Role: user.RoleReceiver}
	other    = user.Principal{ID: 3, Role: user.RoleReceiver}
	admin    = user.Principal{ID: 9, Role: user.RoleAdmin}
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(c.Now)}, opts...)
	s := NewService(memory.New().Listings(), authz.NewEvaluator(), logger.NewTestLogger(t), opts...)
	return s, c
}

func createListing(t *testing.T, s *Service, c *clock) *listing.Listing {
	t.Helper()
	l, err := s.Create(context.Background(), donor, listing.CreateInput{
		Title:          "Bread",
		Quantity:       "10 loaves",
		PickupLocation: "Main St 1",
		ExpiresAt:      c.Now().Add(2 * time.Hour),
	})
	require.NoError(t, err)
	return l
}

func TestCreate(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()

	l := createListing(t, s, c)
	assert.NotZero(t, l.ID)
	assert.Equal(t, listing.StatusAvailable, l.Status)
	assert.Equal(t, donor.ID, l.OwnerID)
	assert.Nil(t, l.ClaimantID)

	_, err := s.Create(ctx, receiver, listing.CreateInput{Title: "x", ExpiresAt: c.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Create(ctx, donor, listing.CreateInput{Title: "  ", ExpiresAt: c.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Create(ctx, donor, listing.CreateInput{Title: "x", ExpiresAt: c.Now().Add(-time.Minute)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestClaim(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	claimed, err := s.Claim(ctx, receiver, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimantID)
	assert.Equal(t, receiver.ID, *claimed.ClaimantID)
	assert.True(t, claimed.Consistent())

	_, err = s.Claim(ctx, other, l.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.Claim(ctx, receiver, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClaim_RequiresReceiver(t *testing.T) {
	s, c := newTestService(t)
	l := createListing(t, s, c)

	for _, p := range []user.Principal{donor, admin, {ID: 10, Role: user.RoleMainAdmin}} {
		_, err := s.Claim(context.Background(), p, l.ID)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized, "role %s", p.Role)
	}

	got, err := s.Get(context.Background(), donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusAvailable, got.Status)
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	s, c := newTestService(t)
	l := createListing(t, s, c)

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := s.Claim(context.Background(), user.Principal{ID: id, Role: user.RoleReceiver}, l.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners++
			case apperr.KindOf(err) == apperr.KindConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, n-1, conflicts)

	got, err := s.Get(context.Background(), donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusClaimed, got.Status)
	assert.True(t, got.Consistent())
}

func TestLazyExpiry(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	c.Advance(3 * time.Hour)

	got, err := s.Get(ctx, receiver, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusExpired, got.Status)

	_, err = s.Claim(ctx, receiver, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestLazyExpiry_SkipsClaimed(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	_, err := s.Claim(ctx, receiver, l.ID)
	require.NoError(t, err)
	c.Advance(3 * time.Hour)

	got, err := s.Get(ctx, receiver, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusClaimed, got.Status)

	picked, err := s.ConfirmPickup(ctx, receiver, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusPickedUp, picked.Status)
	assert.True(t, picked.Consistent())
}

func TestExpire(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	// not yet due: unchanged
	got, err := s.Expire(ctx, donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusAvailable, got.Status)

	_, err = s.Expire(ctx, receiver, l.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	c.Advance(3 * time.Hour)
	got, err = s.Expire(ctx, donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusExpired, got.Status)

	// idempotent
	got, err = s.Expire(ctx, admin, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusExpired, got.Status)
}

func TestConfirmPickup(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	_, err := s.ConfirmPickup(ctx, donor, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = s.Claim(ctx, receiver, l.ID)
	require.NoError(t, err)

	_, err = s.ConfirmPickup(ctx, other, l.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	got, err := s.ConfirmPickup(ctx, donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusPickedUp, got.Status)

	_, err = s.ConfirmPickup(ctx, receiver, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestModeration(t *testing.T) {
	s, c := newTestService(t, WithModeration(true))
	ctx := context.Background()
	l := createListing(t, s, c)
	assert.Equal(t, listing.StatusPending, l.Status)

	_, err := s.Claim(ctx, receiver, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = s.Approve(ctx, donor, l.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	approved, err := s.Approve(ctx, admin, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusAvailable, approved.Status)

	_, err = s.Approve(ctx, admin, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestReserveReleaseComplete(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	reserved, err := s.Reserve(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusReserved, reserved.Status)

	_, err = s.Reserve(ctx, l.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	released, err := s.Release(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusAvailable, released.Status)

	_, err = s.Reserve(ctx, l.ID)
	require.NoError(t, err)
	done, err := s.Complete(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusCollected, done.Status)
	assert.True(t, done.Status.Terminal())
}

func TestReserve_ClaimedIsConflict(t *testing.T) {
	s, c := newTestService(t)
	ctx := context.Background()
	l := createListing(t, s, c)

	_, err := s.Claim(ctx, receiver, l.ID)
	require.NoError(t, err)

	_, err = s.Reserve(ctx, l.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestReserved_HeldAgainstModerationAndClaims(t *testing.T) {
	s, c := newTestService(t, WithModeration(true))
	ctx := context.Background()
	l := createListing(t, s, c)

	_, err := s.Approve(ctx, admin, l.ID)
	require.NoError(t, err)
	_, err = s.Reserve(ctx, l.ID)
	require.NoError(t, err)

	_, err = s.Approve(ctx, admin, l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = s.Claim(ctx, other, l.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	c.Advance(3 * time.Hour)
	got, err := s.Get(ctx, donor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusReserved, got.Status)
	assert.Nil(t, got.ClaimantID)
	assert.True(t, got.Consistent())

	done, err := s.Complete(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusCollected, done.Status)
}

func TestPendingCannotBeCompleted(t *testing.T) {
	s, c := newTestService(t, WithModeration(true))
	l := createListing(t, s, c)

	_, err := s.Complete(context.Background(), l.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}
