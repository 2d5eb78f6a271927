package application

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCollected Status = "collected"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCollected},
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

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCollected:
		return st, true
	}
	return "", false
}

type Application struct {
	ID                  int64      `json:"id" db:"id"`
	ListingID           int64      `json:"listing_id" db:"listing_id"`
	SeekerID            int64      `json:"seeker_id" db:"seeker_id"`
	Status              Status     `json:"status" db:"status"`
	Message             string     `json:"message" db:"message"`
	BeneficiariesCount  int        `json:"beneficiaries_count" db:"beneficiaries_count"`
	PreferredPickupTime *time.Time `json:"preferred_pickup_time,omitempty" db:"preferred_pickup_time"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

type Details struct {
	Message             string
	BeneficiariesCount  int
	PreferredPickupTime *time.Time
}
