package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sweet-shop/internal/model"
)

type accessGate interface {
	Resolve(ctx context.Context, token string, now time.Time) (model.Account, error)
	RequireAdmin(account model.Account) (model.Account, error)
}

type contextKey string

const accountContextKey contextKey = "account"

type AuthMiddleware struct {
	gate accessGate
	now  func() time.Time
}

func NewAuthMiddleware(gate accessGate) *AuthMiddleware {
	return &AuthMiddleware{gate: gate, now: time.Now}
}

// RequireAuth resolves the bearer token to an account and stores it in the
// request context. Every authentication failure gets the same 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthenticated(w)
			return
		}

		account, err := m.gate.Resolve(r.Context(), token, m.now())
		if errors.Is(err, model.ErrUnauthenticated) {
			slog.Debug("token rejected", "path", r.URL.Path, "reason", err.Error())
			writeUnauthenticated(w)
			return
		}
		if err != nil {
			slog.Error("resolve account failed", "path", r.URL.Path, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := AccountFromContext(r.Context())
		if !ok {
			writeUnauthenticated(w)
			return
		}

		if _, err := m.gate.RequireAdmin(account); err != nil {
			writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Not enough permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func AccountFromContext(ctx context.Context) (model.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(model.Account)
	return account, ok
}

// WithAccount returns a copy of ctx carrying account, as RequireAuth does.
func WithAccount(ctx context.Context, account model.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
}
