package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"foodshare/pkg/logger"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2, logger.NewNoOpLogger())

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	// buckets are per client
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNoOpLogger())
	rl.Allow("a")

	rl.Cleanup(time.Hour)
	assert.Len(t, rl.limiters, 1)

	time.Sleep(5 * time.Millisecond)
	rl.Cleanup(time.Millisecond)
	assert.Empty(t, rl.limiters)
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 1, logger.NewNoOpLogger())
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(remote string, userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
		req.RemoteAddr = remote
		if userID != 0 {
			req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000", 0))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5001", 0))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2:5000", 0))

	// authenticated callers are keyed by user, not address
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1:5000", 7))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2:5000", 7))
}
