package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/apperr"
	"foodshare/internal/payment"
	"foodshare/internal/storage/memory"
	"foodshare/internal/subscription"
	subscriptionservice "foodshare/internal/subscription/service"
	"foodshare/internal/user"
	"foodshare/pkg/logger"
)

func newTestService(t *testing.T) (*UserService, *memory.Store) {
	t.Helper()
	store := memory.New()
	subs := subscriptionservice.NewService(store.Subscriptions())
	return NewUserService(store.Users(), subs, logger.NewTestLogger(t)), store
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, " Alice@Example.com ", "Alice", "s3cret-pass", "provider")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, user.RoleDonor, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.Password)

	_, err = s.Register(ctx, "alice@example.com", "Alice 2", "another-pass", "receiver")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.Login(ctx, "ALICE@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)

	_, err = s.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRegister_Roles(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, role := range []string{"admin", "main_admin", "superuser", ""} {
		_, err := s.Register(ctx, role+"@example.com", "x", "password", role)
		assert.ErrorIs(t, err, apperr.ErrValidation, "role %q", role)
	}

	u, err := s.Register(ctx, "seeker@example.com", "x", "password", "seeker")
	require.NoError(t, err)
	assert.Equal(t, user.RoleReceiver, u.Role)
}

func TestResolve(t *testing.T) {
	s, store := newTestService(t)
	ctx := context.Background()

	u, err := s.Register(ctx, "bob@example.com", "Bob", "password", "receiver")
	require.NoError(t, err)

	p, err := s.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Principal{ID: u.ID, Role: user.RoleReceiver}, p)

	_, err = s.SetVerified(ctx, u.ID, true)
	require.NoError(t, err)

	plan := store.AddPlan(subscription.Plan{Name: "Pro", Price: decimal.NewFromInt(10), DurationDays: 30})
	require.NoError(t, store.Payments().InTx(ctx, func(tx payment.TxRepository) error {
		return tx.UpsertSubscription(ctx, &subscription.Subscription{
			UserID:   u.ID,
			PlanID:   plan.ID,
			EndDate:  time.Now().Add(time.Hour),
			IsActive: true,
		})
	}))

	p, err = s.Resolve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, p.Verified)
	assert.True(t, p.SubscriptionActive)

	_, err = s.Resolve(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
