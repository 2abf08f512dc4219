package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sweet-shop/internal/model"
)

var fixedNow = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher, err := NewBcryptHasher(4)
	require.NoError(t, err)

	t.Run("same password hashes differently and both verify", func(t *testing.T) {
		first, err := hasher.Hash("secret1")
		require.NoError(t, err)
		second, err := hasher.Hash("secret1")
		require.NoError(t, err)

		require.NotEqual(t, first, second)
		require.NotContains(t, first, "secret1")
		require.True(t, hasher.Verify("secret1", first))
		require.True(t, hasher.Verify("secret1", second))
	})

	t.Run("wrong password does not verify", func(t *testing.T) {
		hash, err := hasher.Hash("secret1")
		require.NoError(t, err)
		require.False(t, hasher.Verify("secret2", hash))
	})

	t.Run("malformed hash is a mismatch", func(t *testing.T) {
		require.False(t, hasher.Verify("secret1", ""))
		require.False(t, hasher.Verify("secret1", "not-a-bcrypt-hash"))
	})

	t.Run("cost out of range is rejected", func(t *testing.T) {
		_, err := NewBcryptHasher(64)
		require.Error(t, err)
	})
}

func TestTokenCodec_IssueAndValidate(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	token, expiresAt, err := codec.Issue("a@x.com", model.RoleAdmin, fixedNow)
	require.NoError(t, err)
	require.Equal(t, fixedNow.Add(30*time.Minute), expiresAt)

	claims, err := codec.Validate(token, fixedNow.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Subject)
	require.Equal(t, model.RoleAdmin, claims.Role)
	require.True(t, claims.IssuedAt.Equal(fixedNow))
	require.True(t, claims.ExpiresAt.Equal(expiresAt))
}

func TestTokenCodec_Validate(t *testing.T) {
	t.Parallel()

	codec, err := NewTokenCodec("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	userToken, _, err := codec.Issue("a@x.com", model.RoleUser, fixedNow)
	require.NoError(t, err)
	adminToken, _, err := codec.Issue("a@x.com", model.RoleAdmin, fixedNow)
	require.NoError(t, err)

	t.Run("expires exactly at the end of the window", func(t *testing.T) {
		_, err := codec.Validate(userToken, fixedNow.Add(30*time.Minute-time.Second))
		require.NoError(t, err)

		_, err = codec.Validate(userToken, fixedNow.Add(30*time.Minute))
		require.ErrorIs(t, err, model.ErrTokenExpired)
	})

	t.Run("payload swapped under another signature", func(t *testing.T) {
		userParts := strings.Split(userToken, ".")
		adminParts := strings.Split(adminToken, ".")
		require.Len(t, userParts, 3)

		forged := strings.Join([]string{userParts[0], adminParts[1], userParts[2]}, ".")
		_, err := codec.Validate(forged, fixedNow)
		require.ErrorIs(t, err, model.ErrInvalidSignature)
	})

	t.Run("signature is checked before expiry", func(t *testing.T) {
		other, err := NewTokenCodec("another-secret", "HS256", 30*time.Minute)
		require.NoError(t, err)
		foreign, _, err := other.Issue("a@x.com", model.RoleUser, fixedNow)
		require.NoError(t, err)

		_, err = codec.Validate(foreign, fixedNow.Add(time.Hour))
		require.ErrorIs(t, err, model.ErrInvalidSignature)
	})

	t.Run("token signed with another algorithm", func(t *testing.T) {
		strong, err := NewTokenCodec("test-secret", "HS512", 30*time.Minute)
		require.NoError(t, err)
		token, _, err := strong.Issue("a@x.com", model.RoleUser, fixedNow)
		require.NoError(t, err)

		_, err = codec.Validate(token, fixedNow)
		require.ErrorIs(t, err, model.ErrInvalidSignature)
	})

	t.Run("garbage is an invalid token", func(t *testing.T) {
		_, err := codec.Validate("not-a-token", fixedNow)
		require.ErrorIs(t, err, model.ErrInvalidToken)

		_, err = codec.Validate("", fixedNow)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})

	t.Run("empty subject is rejected", func(t *testing.T) {
		token, _, err := codec.Issue("", model.RoleUser, fixedNow)
		require.NoError(t, err)

		_, err = codec.Validate(token, fixedNow)
		require.ErrorIs(t, err, model.ErrInvalidToken)
	})
}

func TestNewTokenCodec(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec("", "HS256", time.Minute)
	require.Error(t, err)

	_, err = NewTokenCodec("secret", "RS256", time.Minute)
	require.Error(t, err)

	codec, err := NewTokenCodec("secret", "hs384", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTokenTTL, codec.TTL())

	require.True(t, SupportedAlgorithm("HS512"))
	require.False(t, SupportedAlgorithm("none"))
}
