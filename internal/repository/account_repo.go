package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"sweet-shop/internal/model"
)

type AccountRepository struct {
	q Querier
}

func NewAccountRepository(q Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

// Create relies on the unique index over lower(email) to reject a duplicate,
// including one inserted by a concurrent registration.
func (r *AccountRepository) Create(ctx context.Context, a model.Account) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Email, a.PasswordHash, a.Name, a.Role, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.q.QueryRow(ctx,
		`SELECT id, email, password_hash, name, role, created_at, updated_at
		 FROM accounts WHERE lower(email) = lower($1)`, strings.TrimSpace(email)).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Role, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by email: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) SetRole(ctx context.Context, id string, role model.Role, updatedAt time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1`,
		id, role, updatedAt)
	if err != nil {
		return fmt.Errorf("set account role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}
