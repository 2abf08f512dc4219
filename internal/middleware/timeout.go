package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"sweet-shop/internal/model"
)

// Timeout bounds a request with http.TimeoutHandler. A request that runs past
// the deadline gets a 503 with the usual JSON error envelope.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "Request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers overwrite this; it only survives on the timeout path.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
