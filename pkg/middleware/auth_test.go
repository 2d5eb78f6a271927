package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/pkg/jwt"
)

func TestBasicAuth(t *testing.T) {
	h := BasicAuth("metrics", "s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	basic := func(creds string) string {
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	}
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", basic("metrics:s3cret"), http.StatusOK},
		{"wrong password", basic("metrics:s3creT"), http.StatusUnauthorized},
		{"password prefix", basic("metrics:s3c"), http.StatusUnauthorized},
		{"longer password", basic("metrics:s3cret-and-more"), http.StatusUnauthorized},
		{"wrong user", basic("admin:s3cret"), http.StatusUnauthorized},
		{"no colon", basic("metrics"), http.StatusUnauthorized},
		{"bad base64", "Basic !!!", http.StatusUnauthorized},
		{"bearer scheme", "Bearer abc", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestJWTAuth(t *testing.T) {
	var got int64
	h := JWTAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tok, err := jwt.GenerateToken("secret", 17, time.Hour)
	require.NoError(t, err)
	forged, err := jwt.GenerateToken("other", 17, time.Hour)
	require.NoError(t, err)

	send := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send(""))
	assert.Equal(t, http.StatusUnauthorized, send("Bearer "+forged))
	assert.Equal(t, http.StatusUnauthorized, send("Token "+tok))

	assert.Equal(t, http.StatusOK, send("bearer "+tok))
	assert.Equal(t, int64(17), got)
}
