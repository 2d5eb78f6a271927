package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/api/dto"
	applicationservice "foodshare/internal/application/service"
	"foodshare/internal/authz"
	listingservice "foodshare/internal/listing/service"
	"foodshare/internal/orchestrator"
	paymentservice "foodshare/internal/payment/service"
	"foodshare/internal/settings"
	"foodshare/internal/storage/memory"
	subscriptionservice "foodshare/internal/subscription/service"
	"foodshare/internal/token"
	"foodshare/internal/user"
	"foodshare/internal/user/service"
	"foodshare/pkg/hash"
	"foodshare/pkg/logger"
	"foodshare/pkg/middleware"
)

const secret = "test-secret"

func newRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	log := logger.NewTestLogger(t)
	store := memory.New()
	az := authz.NewEvaluator()
	subs := subscriptionservice.NewService(store.Subscriptions())
	users := service.NewUserService(store.Users(), subs, log)
	listings := listingservice.NewService(store.Listings(), az, log)
	orch := orchestrator.New(orchestrator.Deps{
		Users:        users,
		Listings:     listings,
		Applications: applicationservice.NewService(store.Applications(), listings, az, log),
		Payments:     paymentservice.NewService(store.Payments(), subs, az, log, ""),
		Settings:     settings.NewStore(decimal.Zero),
		Authz:        az,
	}, orchestrator.PolicyOpen, log)

	h := NewHandler(users, secret, token.NewService(store.Tokens()), orch)
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(secret))
		pr.Get("/auth/me", h.Me)
		pr.Post("/api/admin/users/{id}/verify", h.Verify)
	})
	return r, store
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email, password string) dto.TokenResponse {
	t.Helper()
	rec := send(h, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthFlow(t *testing.T) {
	r, _ := newRouter(t)

	rec := send(r, http.MethodPost, "/auth/register", "", `{"email":"dana@example.com","name":"Dana","password":"secret1","role":"donor"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = send(r, http.MethodPost, "/auth/register", "", `{"email":"dana@example.com","name":"Dana","password":"secret1","role":"donor"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(r, http.MethodPost, "/auth/register", "", `{"email":"eve@example.com","name":"Eve","password":"secret1","role":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(r, http.MethodPost, "/auth/login", "", `{"email":"dana@example.com","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tokens := login(t, r, "dana@example.com", "secret1")
	assert.Equal(t, "donor", tokens.Role)
	assert.NotEmpty(t, tokens.RefreshToken)

	rec = send(r, http.MethodGet, "/auth/me", tokens.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var me orchestrator.Me
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, user.RoleDonor, me.Principal.Role)

	rec = send(r, http.MethodGet, "/auth/me", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(r, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var rotated dto.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	rec = send(r, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+tokens.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerify(t *testing.T) {
	r, store := newRouter(t)

	rec := send(r, http.MethodPost, "/auth/register", "", `{"email":"dana@example.com","name":"Dana","password":"secret1","role":"provider"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	hashed, err := hash.HashPassword("secret1")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(context.Background(), &user.User{
		Email: "admin@example.com", Name: "Admin", Password: hashed, Role: user.RoleAdmin,
	}))

	donor := login(t, r, "dana@example.com", "secret1")
	admin := login(t, r, "admin@example.com", "secret1")
	path := "/api/admin/users/" + strconv.FormatInt(created.ID, 10) + "/verify"

	rec = send(r, http.MethodPost, path, donor.Token, `{"verified":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(r, http.MethodPost, path, admin.Token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(r, http.MethodPost, path, admin.Token, `{"verified":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var u user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.True(t, u.IsVerified)
}
