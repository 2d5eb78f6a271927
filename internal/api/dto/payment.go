package dto

type InitiatePaymentRequest struct {
	PlanID int64 `json:"plan_id" validate:"required,gt=0"`
}

// PaymentCallbackRequest is what the gateway posts back.
type PaymentCallbackRequest struct {
	ProviderRef string `json:"provider_ref" validate:"required"`
	Status      string `json:"status" validate:"required"`
}

type UpdateSettingsRequest struct {
	ProPlanPrice string `json:"pro_plan_price" validate:"required,numeric"`
}
