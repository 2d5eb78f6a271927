package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	DurationDays int             `json:"duration_days" db:"duration_days"`
}

// Subscription is one row per user, replaced on every successful payment.
type Subscription struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	PlanID    int64     `json:"plan_id" db:"plan_id"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.IsActive && s.EndDate.After(now)
}
