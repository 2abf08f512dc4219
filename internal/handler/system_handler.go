package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sweet-shop/pkg/apierror"
)

const apiVersion = "1.0.0"

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type SystemHandler struct {
	store   HealthChecker
	timeout time.Duration
}

// NewSystemHandler accepts a nil store for drivers with nothing to ping.
func NewSystemHandler(store HealthChecker) *SystemHandler {
	return &SystemHandler{store: store, timeout: 2 * time.Second}
}

func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Sweet Shop API",
		"docs":    "/docs",
		"version": apiVersion,
	})
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		if err := h.store.Health(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeError(w, apierror.New("UNAVAILABLE", "Store is unreachable", "", http.StatusServiceUnavailable))
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
