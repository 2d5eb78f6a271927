package dto

import "time"

type CreateListingRequest struct {
	Title          string    `json:"title" validate:"required,max=255"`
	Description    string    `json:"description"`
	Quantity       string    `json:"quantity" validate:"required,max=100"`
	Category       string    `json:"category" validate:"omitempty,max=50"`
	PickupLocation string    `json:"pickup_location"`
	ExpiresAt      time.Time `json:"expires_at" validate:"required"`
}

type CreateApplicationRequest struct {
	ListingID           int64      `json:"listing_id" validate:"required,gt=0"`
	Message             string     `json:"message" validate:"max=2000"`
	BeneficiariesCount  int        `json:"beneficiaries_count"`
	PreferredPickupTime *time.Time `json:"preferred_pickup_time"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected collected"`
}
