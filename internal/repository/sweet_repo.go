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

const sweetColumns = `id, name, category, price, quantity, description, image_url, created_at, updated_at`

type SweetRepository struct {
	q Querier
}

func NewSweetRepository(q Querier) *SweetRepository {
	return &SweetRepository{q: q}
}

func scanSweet(row pgx.Row) (model.Sweet, error) {
	var s model.Sweet
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Quantity,
		&s.Description, &s.ImageURL, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SweetRepository) Create(ctx context.Context, s model.Sweet) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sweets (`+sweetColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.Name, s.Category, s.Price, s.Quantity, s.Description, s.ImageURL, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create sweet: %w", err)
	}
	return nil
}

func (r *SweetRepository) FindByID(ctx context.Context, id string) (model.Sweet, error) {
	s, err := scanSweet(r.q.QueryRow(ctx,
		`SELECT `+sweetColumns+` FROM sweets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	if err != nil {
		return model.Sweet{}, fmt.Errorf("find sweet: %w", err)
	}
	return s, nil
}

// List returns matching items in creation order. Text filters are
// case-insensitive substring matches; price bounds are inclusive.
func (r *SweetRepository) List(ctx context.Context, filter model.SweetFilter) ([]model.Sweet, error) {
	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if name := strings.TrimSpace(filter.Name); name != "" {
		where = append(where, fmt.Sprintf("strpos(lower(name), lower($%d)) > 0", argIdx))
		args = append(args, name)
		argIdx++
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		where = append(where, fmt.Sprintf("strpos(lower(category), lower($%d)) > 0", argIdx))
		args = append(args, category)
		argIdx++
	}
	if filter.MinPrice != nil {
		where = append(where, fmt.Sprintf("price >= $%d", argIdx))
		args = append(args, *filter.MinPrice)
		argIdx++
	}
	if filter.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *filter.MaxPrice)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.q.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM sweets %s ORDER BY created_at, id`, sweetColumns, whereClause),
		args...)
	if err != nil {
		return nil, fmt.Errorf("list sweets: %w", err)
	}
	defer rows.Close()

	sweets := make([]model.Sweet, 0)
	for rows.Next() {
		s, err := scanSweet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sweet: %w", err)
		}
		sweets = append(sweets, s)
	}

	return sweets, rows.Err()
}

// Update writes every supplied field in one statement. NULL parameters keep
// the stored value for required columns; the optional text columns take a
// flag so an explicit null can clear them.
func (r *SweetRepository) Update(ctx context.Context, id string, patch model.SweetPatch, updatedAt time.Time) (model.Sweet, error) {
	s, err := scanSweet(r.q.QueryRow(ctx,
		`UPDATE sweets SET
		    name        = COALESCE($2, name),
		    category    = COALESCE($3, category),
		    price       = COALESCE($4, price),
		    quantity    = COALESCE($5, quantity),
		    description = CASE WHEN $6::boolean THEN $7::text ELSE description END,
		    image_url   = CASE WHEN $8::boolean THEN $9::text ELSE image_url END,
		    updated_at  = $10
		 WHERE id = $1
		 RETURNING `+sweetColumns,
		id, patch.Name, patch.Category, patch.Price, patch.Quantity,
		patch.Description.Set, patch.Description.Value,
		patch.ImageURL.Set, patch.ImageURL.Value,
		updatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	if err != nil {
		return model.Sweet{}, fmt.Errorf("update sweet: %w", err)
	}
	return s, nil
}

func (r *SweetRepository) Delete(ctx context.Context, id string) (model.Sweet, error) {
	s, err := scanSweet(r.q.QueryRow(ctx,
		`DELETE FROM sweets WHERE id = $1 RETURNING `+sweetColumns, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	if err != nil {
		return model.Sweet{}, fmt.Errorf("delete sweet: %w", err)
	}
	return s, nil
}

// AdjustQuantity applies delta with a conditional update so two concurrent
// purchases cannot both take the last unit. When no row changes, a follow-up
// read tells a missing item from one with too little stock.
func (r *SweetRepository) AdjustQuantity(ctx context.Context, id string, delta int64, updatedAt time.Time) (model.Sweet, error) {
	s, err := scanSweet(r.q.QueryRow(ctx,
		`UPDATE sweets SET quantity = quantity + $2, updated_at = $3
		 WHERE id = $1 AND quantity + $2 >= 0
		 RETURNING `+sweetColumns,
		id, delta, updatedAt))
	if err == nil {
		return s, nil
	}
	if isNumericOutOfRange(err) {
		return model.Sweet{}, model.ErrStockOverflow
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Sweet{}, fmt.Errorf("adjust sweet quantity: %w", err)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return model.Sweet{}, err
	}
	return current, model.ErrInsufficientStock
}
