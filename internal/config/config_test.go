package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "STORAGE_DRIVER", "DATABASE_URL", "DATABASE_NAME", "SECRET_KEY",
		"ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "BCRYPT_COST", "CORS_ORIGINS",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "LOG_LEVEL", "LOG_FORMAT", "TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8000", cfg.ServerPort)
	require.Equal(t, DriverPostgres, cfg.StorageDriver)
	require.Equal(t, "sweet_shop", cfg.DatabaseName)
	require.Equal(t, "HS256", cfg.Algorithm)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 12, cfg.BcryptCost)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:5174"}, cfg.CORSOrigins)
	require.True(t, cfg.UsesDefaultSecret())
	require.Empty(t, cfg.TrustedProxies)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, ,https://admin.example.com")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "admin-secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverMemory, cfg.StorageDriver)
	require.Equal(t, "HS512", cfg.Algorithm)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.False(t, cfg.UsesDefaultSecret())
}

func TestLoad_RejectsMalformedTrustedProxies(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, not-an-ip")

	_, err := Load()
	require.ErrorContains(t, err, "TRUSTED_PROXIES")
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies("10.0.0.1, 172.16.0.0/12 ,::ffff:192.0.2.9, fd00::/8")
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("192.0.2.9/32"),
		netip.MustParsePrefix("fd00::/8"),
	}, prefixes)

	prefixes, err = ParseTrustedProxies("")
	require.NoError(t, err)
	require.Empty(t, prefixes)

	_, err = ParseTrustedProxies("10.0.0.0/33")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:       "8000",
			RequestTimeout:   time.Second,
			StorageDriver:    DriverMemory,
			SecretKey:        "secret",
			Algorithm:        "HS256",
			AccessTokenTTL:   time.Minute,
			BcryptCost:       12,
			RateLimitRPM:     10,
			AuthRateLimitRPM: 10,
			LogFormat:        "json",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "mongo" }},
		{name: "postgres without url", mutate: func(c *Config) { c.StorageDriver = DriverPostgres; c.DBMaxConns = 1 }},
		{name: "asymmetric algorithm", mutate: func(c *Config) { c.Algorithm = "RS256" }},
		{name: "zero ttl", mutate: func(c *Config) { c.AccessTokenTTL = 0 }},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 2 }},
		{name: "admin email without password", mutate: func(c *Config) { c.AdminEmail = "admin@example.com" }},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = " " }},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
