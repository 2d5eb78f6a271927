// Package settings holds the process-wide platform settings.
package settings

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"foodshare/internal/apperr"
)

type Settings struct {
	ProPlanPrice decimal.Decimal `json:"pro_plan_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Store initialises the settings on first access and serialises updates.
type Store struct {
	once     sync.Once
	mu       sync.RWMutex
	defaults func() Settings
	current  Settings
}

func NewStore(defaultPrice decimal.Decimal) *Store {
	return &Store{defaults: func() Settings {
		return Settings{ProPlanPrice: defaultPrice, UpdatedAt: time.Now().UTC()}
	}}
}

func (s *Store) init() {
	s.once.Do(func() {
		s.mu.Lock()
		s.current = s.defaults()
		s.mu.Unlock()
	})
}

func (s *Store) Get() Settings {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) SetProPlanPrice(price decimal.Decimal) (Settings, error) {
	if price.IsNegative() {
		return Settings{}, apperr.Validation("settings.update", "pro_plan_price must not be negative")
	}
	s.init()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.ProPlanPrice = price.Round(2)
	s.current.UpdatedAt = time.Now().UTC()
	return s.current, nil
}
