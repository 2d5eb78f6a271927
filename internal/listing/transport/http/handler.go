package http

import (
	"context"
	"net/http"

	"foodshare/internal/api/dto"
	"foodshare/internal/listing"
	"foodshare/internal/orchestrator"
	"foodshare/pkg/middleware"
)

type Handler struct {
	Orch *orchestrator.Orchestrator
}

func NewListingHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.CreateListingRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	l, err := h.Orch.CreateListing(r.Context(), userID, listing.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Quantity:       req.Quantity,
		Category:       req.Category,
		PickupLocation: req.PickupLocation,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusCreated, l)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.Orch.GetListing)
}

func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.Orch.ClaimListing)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.Orch.ApproveListing)
}

func (h *Handler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.Orch.ConfirmListingPickup)
}

func (h *Handler) Expire(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.Orch.ExpireListing)
}

// act handles the body-less routes that address one listing by id.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, id int64) (*listing.Listing, error)) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := dto.PathID(r, "id")
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	l, err := op(r.Context(), userID, id)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, l)
}
