package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_GeneralBudgetIsSeparate(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)
	handler := mw.Handler(okHandler())

	// Exhaust the auth bucket first.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sweets", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedAuth(t *testing.T) {
	mw := NewRateLimitMiddleware(100, 1)
	handler := mw.Handler(okHandler())

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, rec1.Code)

	// Burst is 1, so the immediate second request has no token left.
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/auth/register", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	assert.Contains(t, rec2.Body.String(), "RATE_LIMITED")

	// A spoofed forwarding header from an untrusted peer is still the same client.
	spoofed := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	spoofed.Header.Set("X-Forwarded-For", "198.51.100.99")
	recSpoofed := httptest.NewRecorder()
	NewRealIP(nil).Handler(handler).ServeHTTP(recSpoofed, spoofed)
	assert.Equal(t, http.StatusTooManyRequests, recSpoofed.Code)

	// A different client has its own bucket.
	req3 := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req3.RemoteAddr = "203.0.113.7:5120"
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)
	assert.Equal(t, http.StatusOK, rec3.Code)
}

func TestRateLimitMiddleware_Configuration(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0)
	assert.Equal(t, 300, mw.generalRPM)
	assert.Equal(t, 30, mw.authRPM)
}
