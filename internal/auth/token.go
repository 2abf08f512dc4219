package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sweet-shop/internal/model"
)

const DefaultTokenTTL = 30 * time.Minute

var signingMethods = map[string]*jwt.SigningMethodHMAC{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

// SupportedAlgorithm reports whether alg names an HMAC method the codec can sign with.
func SupportedAlgorithm(alg string) bool {
	_, ok := signingMethods[strings.ToUpper(strings.TrimSpace(alg))]
	return ok
}

type tokenClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HMAC-signed access tokens. It never reads
// the clock itself; callers pass the current time in.
type TokenCodec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

func NewTokenCodec(secret string, algorithm string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}

	method, ok := signingMethods[strings.ToUpper(strings.TrimSpace(algorithm))]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenCodec{secret: []byte(secret), method: method, ttl: ttl}, nil
}

func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject that expires one TTL after now.
func (c *TokenCodec) Issue(subject string, role model.Role, now time.Time) (string, time.Time, error) {
	issuedAt := now.UTC()
	expiresAt := issuedAt.Add(c.ttl)

	token := jwt.NewWithClaims(c.method, tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks the signature, then expiry against now, then returns the claims.
func (c *TokenCodec) Validate(tokenString string, now time.Time) (model.ClaimSet, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.ClaimSet{}, model.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.ClaimSet{}, model.ErrTokenExpired
	default:
		return model.ClaimSet{}, model.ErrInvalidToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return model.ClaimSet{}, model.ErrInvalidToken
	}

	set := model.ClaimSet{Subject: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		set.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		set.ExpiresAt = claims.ExpiresAt.Time
	}

	return set, nil
}
