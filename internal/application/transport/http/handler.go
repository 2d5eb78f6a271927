package http

import (
	"net/http"

	"foodshare/internal/api/dto"
	"foodshare/internal/application"
	"foodshare/internal/orchestrator"
	"foodshare/pkg/middleware"
)

type Handler struct {
	Orch *orchestrator.Orchestrator
}

func NewApplicationHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.CreateApplicationRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	a, err := h.Orch.CreateApplication(r.Context(), userID, req.ListingID, application.Details{
		Message:             req.Message,
		BeneficiariesCount:  req.BeneficiariesCount,
		PreferredPickupTime: req.PreferredPickupTime,
	})
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := dto.PathID(r, "id")
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	a, err := h.Orch.GetApplication(r.Context(), userID, id)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := dto.PathID(r, "id")
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	a, err := h.Orch.UpdateApplicationStatus(r.Context(), userID, id, application.Status(req.Status))
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := dto.PathID(r, "id")
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	a, err := h.Orch.ConfirmApplicationPickup(r.Context(), userID, id)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, a)
}
