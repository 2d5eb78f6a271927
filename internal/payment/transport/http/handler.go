package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"foodshare/internal/api/dto"
	"foodshare/internal/orchestrator"
	"foodshare/pkg/middleware"
)

type Handler struct {
	Orch *orchestrator.Orchestrator
}

func NewPaymentHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Orch.Plans(r.Context())
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, plans)
}

func (h *Handler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.InitiatePaymentRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	started, err := h.Orch.InitiatePayment(r.Context(), userID, req.PlanID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusCreated, started)
}

// Callback is the public, replayable gateway notification.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentCallbackRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	res, err := h.Orch.HandlePaymentCallback(r.Context(), req.ProviderRef, req.Status)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, res)
}

// Gateway stands in for the hosted payment page the initiation URL points at.
func (h *Handler) Gateway(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	dto.WriteJSON(w, http.StatusOK, map[string]string{
		"provider_ref": ref,
		"message":      "Payment page placeholder. POST /api/payments/callback with provider_ref and status to complete the payment.",
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	txs, err := h.Orch.PaymentHistory(r.Context(), userID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, txs)
}

func (h *Handler) Subscription(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	sub, err := h.Orch.Subscription(r.Context(), userID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, sub)
}
