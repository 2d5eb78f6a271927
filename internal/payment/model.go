package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// ParseOutcome accepts the gateway's callback outcome in any letter case.
func ParseOutcome(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusSuccess, StatusFailed:
		return st, true
	}
	return "", false
}

type Transaction struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"user_id" db:"user_id"`
	PlanID      int64           `json:"plan_id" db:"plan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Status      Status          `json:"status" db:"status"`
	ProviderRef string          `json:"provider_ref" db:"provider_ref"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type Initiation struct {
	TransactionID int64  `json:"transaction_id"`
	ProviderRef   string `json:"provider_ref"`
	PaymentURL    string `json:"payment_url"`
	Status        Status `json:"status"`
}

type CallbackResult struct {
	TransactionID int64  `json:"transaction_id"`
	ProviderRef   string `json:"provider_ref"`
	Status        Status `json:"status"`
	// Replayed is true when the transaction was already terminal.
	Replayed bool `json:"replayed"`
}
