package http

import (
	"errors"
	"net/http"

	"foodshare/internal/api/dto"
	"foodshare/internal/orchestrator"
	"foodshare/internal/token"
	"foodshare/internal/user"
	"foodshare/internal/user/service"
	"foodshare/pkg/middleware"
)

type Handler struct {
	UserService *service.UserService
	JWT         *service.JWTManager
	Tokens      *token.Service
	Orch        *orchestrator.Orchestrator
}

func NewHandler(us *service.UserService, jwtSecret string, tokens *token.Service, orch *orchestrator.Orchestrator) *Handler {
	return &Handler{
		UserService: us,
		JWT:         service.NewJWTManager(jwtSecret),
		Tokens:      tokens,
		Orch:        orch,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	dto.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	u, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCreds) {
			dto.WriteJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials", Code: "UNAUTHENTICATED"})
			return
		}
		dto.WriteError(w, err)
		return
	}

	h.issue(w, r, u)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	next, err := h.Tokens.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, token.ErrInvalidToken) || errors.Is(err, token.ErrExpiredToken) {
			dto.WriteJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error(), Code: "UNAUTHENTICATED"})
			return
		}
		dto.WriteError(w, err)
		return
	}

	u, err := h.UserService.Get(r.Context(), next.UserID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	access, err := h.JWT.Generate(u.ID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		Token:        access,
		RefreshToken: next.Token,
	})
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, u *user.User) {
	// Генерация JWT
	access, err := h.JWT.Generate(u.ID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	refresh, err := h.Tokens.Issue(r.Context(), u.ID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}

	dto.WriteJSON(w, http.StatusOK, dto.TokenResponse{
		ID:           u.ID,
		Email:        u.Email,
		Role:         string(u.Role),
		Token:        access,
		RefreshToken: refresh.Token,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	me, err := h.Orch.Me(r.Context(), userID)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, me)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	targetID, err := dto.PathID(r, "id")
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	var req dto.VerifyUserRequest
	if err := dto.Decode(r, &req); err != nil {
		dto.WriteError(w, err)
		return
	}

	u, err := h.Orch.VerifyUser(r.Context(), userID, targetID, *req.Verified)
	if err != nil {
		dto.WriteError(w, err)
		return
	}
	dto.WriteJSON(w, http.StatusOK, u)
}
