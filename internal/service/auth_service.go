package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sweet-shop/internal/auth"
	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

type AccountStore interface {
	Create(ctx context.Context, account model.Account) error
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	SetRole(ctx context.Context, id string, role model.Role, updatedAt time.Time) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hash string) bool
}

type TokenIssuer interface {
	Issue(subject string, role model.Role, now time.Time) (string, time.Time, error)
}

// AuthService is the account directory: registration, login and lookup.
type AuthService struct {
	accounts  AccountStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	now       func() time.Time
	dummyHash string
}

func NewAuthService(accounts AccountStore, hasher PasswordHasher, tokens TokenIssuer) (*AuthService, error) {
	// Compared against when the email is unknown so both failure paths cost one bcrypt check.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		accounts:  accounts,
		hasher:    hasher,
		tokens:    tokens,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

func (s *AuthService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *AuthService) Register(ctx context.Context, email string, password string, name string) (model.Account, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if email == "" || password == "" || name == "" {
		return model.Account{}, apierror.New("VALIDATION_ERROR", "email, password and name are required", "", http.StatusUnprocessableEntity)
	}
	if len(password) > auth.MaxPasswordBytes {
		return model.Account{}, apierror.New("VALIDATION_ERROR",
			fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes), "password", http.StatusUnprocessableEntity)
	}

	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return model.Account{}, model.ErrDuplicateEmail
	case !errors.Is(err, model.ErrAccountNotFound):
		return model.Account{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.Account{}, err
	}

	now := s.now().UTC()
	account := model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store's unique index still rejects a concurrent registration that won the race.
	if err := s.accounts.Create(ctx, account); err != nil {
		return model.Account{}, err
	}

	return account, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *AuthService) Authenticate(ctx context.Context, email string, password string) (model.AccessToken, error) {
	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrAccountNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		return model.AccessToken{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AccessToken{}, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return model.AccessToken{}, model.ErrInvalidCredentials
	}

	now := s.now().UTC()
	token, expiresAt, err := s.tokens.Issue(account.Email, account.Role, now)
	if err != nil {
		return model.AccessToken{}, err
	}

	return model.AccessToken{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
	}, nil
}

func (s *AuthService) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	return s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
}

// EnsureAdmin makes sure an admin account exists for email. A missing account
// is registered with password; an existing one keeps its password and is promoted.
func (s *AuthService) EnsureAdmin(ctx context.Context, email string, password string, name string) (model.Account, error) {
	account, err := s.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrAccountNotFound) {
		account, err = s.Register(ctx, email, password, name)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("ensure admin %s: %w", email, err)
	}

	if account.Role == model.RoleAdmin {
		return account, nil
	}

	now := s.now().UTC()
	if err := s.accounts.SetRole(ctx, account.ID, model.RoleAdmin, now); err != nil {
		return model.Account{}, fmt.Errorf("promote %s to admin: %w", email, err)
	}
	account.Role = model.RoleAdmin
	account.UpdatedAt = now

	slog.Info("admin account ensured", "email", account.Email)
	return account, nil
}
