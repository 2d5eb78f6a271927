package settings

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/apperr"
)

func TestStore_DefaultOnFirstAccess(t *testing.T) {
	s := NewStore(decimal.RequireFromString("10.00"))
	assert.True(t, s.Get().ProPlanPrice.Equal(decimal.NewFromInt(10)))
}

func TestStore_Update(t *testing.T) {
	s := NewStore(decimal.NewFromInt(10))

	got, err := s.SetProPlanPrice(decimal.RequireFromString("12.499"))
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.ProPlanPrice.String())
	assert.Equal(t, "12.50", s.Get().ProPlanPrice.StringFixed(2))
}

func TestStore_RejectsNegative(t *testing.T) {
	s := NewStore(decimal.NewFromInt(10))

	_, err := s.SetProPlanPrice(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.True(t, s.Get().ProPlanPrice.Equal(decimal.NewFromInt(10)))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(decimal.NewFromInt(10))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = s.SetProPlanPrice(decimal.NewFromInt(int64(i)))
			} else {
				_ = s.Get()
			}
		}(i)
	}
	wg.Wait()
	assert.False(t, s.Get().ProPlanPrice.IsNegative())
}
