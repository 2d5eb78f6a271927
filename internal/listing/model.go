package listing

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	// StatusReserved is held for an approved application. Unlike pending
	// it is never reopened by moderation and does not expire.
	StatusReserved  Status = "reserved"
	StatusClaimed   Status = "claimed"
	StatusPickedUp  Status = "picked_up"
	StatusCollected Status = "collected"
	StatusExpired   Status = "expired"
)

var transitions = map[Status][]Status{
	StatusAvailable: {StatusClaimed, StatusPending, StatusReserved, StatusExpired},
	StatusPending:   {StatusAvailable, StatusExpired},
	StatusReserved:  {StatusAvailable, StatusCollected},
	StatusClaimed:   {StatusPickedUp, StatusCollected},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusReserved, StatusClaimed, StatusPickedUp, StatusCollected, StatusExpired:
		return true
	}
	return false
}

type Listing struct {
	ID             int64     `json:"id" db:"id"`
	OwnerID        int64     `json:"owner_id" db:"owner_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Quantity       string    `json:"quantity" db:"quantity"`
	Category       string    `json:"category" db:"category"`
	PickupLocation string    `json:"pickup_location" db:"pickup_location"`
	Status         Status    `json:"status" db:"status"`
	ClaimantID     *int64    `json:"claimant_id,omitempty" db:"claimant_id"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Expirable reports whether lazy expiry applies at now: the deadline has
// passed and nobody holds the listing. Reserved listings are held too.
func (l *Listing) Expirable(now time.Time) bool {
	return now.After(l.ExpiresAt) && l.ClaimantID == nil && CanTransition(l.Status, StatusExpired)
}

// Consistent checks the claimant/status invariants.
func (l *Listing) Consistent() bool {
	if l.ClaimantID != nil {
		switch l.Status {
		case StatusClaimed, StatusPickedUp, StatusCollected:
			return true
		}
		return false
	}
	return l.Status != StatusClaimed && l.Status != StatusPickedUp
}

type CreateInput struct {
	Title          string
	Description    string
	Quantity       string
	Category       string
	PickupLocation string
	ExpiresAt      time.Time
}
