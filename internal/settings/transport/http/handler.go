package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"foodshare/internal/api/dto"
	"foodshare/internal/apperr"
	"foodshare/internal/orchestrator"
	"foodshare/pkg/middleware"
)

type Handler struct {
	Orch *orchestrator.Orchestrator
}

func NewSettingsHandler(orch *orchestrator.Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	s, err := h.Orch.Settings(r.Context(), userID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.UpdateSettingsRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}
	price, err := decimal.NewFromString(req.ProPlanPrice)
	if err != nil {
		dto.WriteError(w, apperr.Validation("settings.update", "pro_plan_price %q is not a decimal", req.ProPlanPrice))
		return
	}

	s, err := h.Orch.UpdateSettings(r.Context(), userID, price)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, s)
}
