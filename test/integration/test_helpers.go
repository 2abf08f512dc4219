//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweet-shop/internal/app"
	"sweet-shop/internal/config"
	"sweet-shop/internal/database"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-pass"
)

// newPostgresServer runs the full stack against TEST_DATABASE_URL after
// migrating it and clearing every table.
func newPostgresServer(t *testing.T) *httptest.Server {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, database.Options{URL: url, MaxConns: 10, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE audit_entries, sweets, accounts")
	require.NoError(t, err)

	cfg := &config.Config{
		RequestTimeout:   10 * time.Second,
		StorageDriver:    config.DriverPostgres,
		SecretKey:        "integration-secret",
		Algorithm:        "HS256",
		AccessTokenTTL:   30 * time.Minute,
		BcryptCost:       4,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     100000,
		AuthRateLimitRPM: 100000,
	}

	h, authService, err := app.NewHandler(cfg, app.PostgresStores(db))
	require.NoError(t, err)
	_, err = authService.EnsureAdmin(ctx, adminEmail, adminPassword, "Admin")
	require.NoError(t, err)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method string, url string, token string, body any) *http.Response {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func login(t *testing.T, server *httptest.Server, email string, password string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.NotEmpty(t, parsed.AccessToken)
	return parsed.AccessToken
}

func register(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     "Shopper",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return login(t, server, email, "secret123")
}
