package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sweet-shop/internal/model"
)

type TokenValidator interface {
	Validate(token string, now time.Time) (model.ClaimSet, error)
}

type AccountFinder interface {
	FindByEmail(ctx context.Context, email string) (model.Account, error)
}

// AccessGate turns a bearer token into the account it belongs to and decides
// whether that account may perform admin actions.
type AccessGate struct {
	tokens   TokenValidator
	accounts AccountFinder
}

func NewAccessGate(tokens TokenValidator, accounts AccountFinder) *AccessGate {
	return &AccessGate{tokens: tokens, accounts: accounts}
}

// Resolve fails with ErrUnauthenticated for a bad or expired token and for a
// token whose subject no longer exists. The codec's reason stays in the chain.
func (g *AccessGate) Resolve(ctx context.Context, token string, now time.Time) (model.Account, error) {
	claims, err := g.tokens.Validate(token, now)
	if err != nil {
		return model.Account{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}

	account, err := g.accounts.FindByEmail(ctx, claims.Subject)
	if errors.Is(err, model.ErrAccountNotFound) {
		return model.Account{}, fmt.Errorf("%w: %w", model.ErrUnauthenticated, err)
	}
	if err != nil {
		return model.Account{}, err
	}

	return account, nil
}

func (g *AccessGate) RequireAdmin(account model.Account) (model.Account, error) {
	if account.Role != model.RoleAdmin {
		return model.Account{}, model.ErrForbidden
	}
	return account, nil
}
