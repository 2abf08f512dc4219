package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/model"
)

var baseTime = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func newSweet(name string, category string, price string, quantity int64) model.Sweet {
	return model.Sweet{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		Quantity:  quantity,
		CreatedAt: baseTime,
		UpdatedAt: baseTime,
	}
}

func TestAccountStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewAccountStore()

	account := model.Account{ID: uuid.NewString(), Email: "Alice@Example.com", Name: "Alice", Role: model.RoleUser}
	require.NoError(t, store.Create(ctx, account))

	t.Run("email lookup ignores case", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "alice@example.COM")
		require.NoError(t, err)
		require.Equal(t, account.ID, found.ID)
	})

	t.Run("duplicate email differing only in case is rejected", func(t *testing.T) {
		err := store.Create(ctx, model.Account{ID: uuid.NewString(), Email: "alice@example.com"})
		require.ErrorIs(t, err, model.ErrDuplicateEmail)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, model.ErrAccountNotFound)
	})

	t.Run("set role", func(t *testing.T) {
		require.NoError(t, store.SetRole(ctx, account.ID, model.RoleAdmin, baseTime))
		found, err := store.FindByEmail(ctx, account.Email)
		require.NoError(t, err)
		require.Equal(t, model.RoleAdmin, found.Role)

		require.ErrorIs(t, store.SetRole(ctx, uuid.NewString(), model.RoleAdmin, baseTime), model.ErrAccountNotFound)
	})
}

func TestSweetStore_ListAndUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSweetStore()

	lolly := newSweet("Lollipop", "Candy", "0.99", 10)
	truffle := newSweet("Dark Truffle", "Chocolate", "5.99", 3)
	require.NoError(t, store.Create(ctx, lolly))
	require.NoError(t, store.Create(ctx, truffle))

	all, err := store.List(ctx, model.SweetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, lolly.ID, all[0].ID)

	minPrice := decimal.RequireFromString("2.0")
	maxPrice := decimal.RequireFromString("10.0")
	matched, err := store.List(ctx, model.SweetFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	require.Equal(t, truffle.ID, matched[0].ID)

	price := decimal.RequireFromString("1.49")
	later := baseTime.Add(time.Hour)
	updated, err := store.Update(ctx, lolly.ID, model.SweetPatch{Price: &price}, later)
	require.NoError(t, err)
	require.True(t, updated.Price.Equal(price))
	require.Equal(t, "Lollipop", updated.Name)
	require.Equal(t, int64(10), updated.Quantity)
	require.Equal(t, later, updated.UpdatedAt)

	_, err = store.Update(ctx, uuid.NewString(), model.SweetPatch{Price: &price}, later)
	require.ErrorIs(t, err, model.ErrSweetNotFound)

	described, err := store.Update(ctx, lolly.ID, model.SweetPatch{Description: model.SetString("fruity")}, later)
	require.NoError(t, err)
	require.Equal(t, "fruity", *described.Description)

	unchanged, err := store.Update(ctx, lolly.ID, model.SweetPatch{Price: &price}, later)
	require.NoError(t, err)
	require.NotNil(t, unchanged.Description)

	cleared, err := store.Update(ctx, lolly.ID, model.SweetPatch{Description: model.ClearString()}, later)
	require.NoError(t, err)
	require.Nil(t, cleared.Description)

	deleted, err := store.Delete(ctx, lolly.ID)
	require.NoError(t, err)
	require.Equal(t, lolly.ID, deleted.ID)

	_, err = store.FindByID(ctx, lolly.ID)
	require.ErrorIs(t, err, model.ErrSweetNotFound)
	_, err = store.Delete(ctx, lolly.ID)
	require.ErrorIs(t, err, model.ErrSweetNotFound)

	all, err = store.List(ctx, model.SweetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestSweetStore_AdjustQuantity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSweetStore()
	sweet := newSweet("Lollipop", "Candy", "0.99", 5)
	require.NoError(t, store.Create(ctx, sweet))

	t.Run("insufficient stock leaves the item unchanged", func(t *testing.T) {
		current, err := store.AdjustQuantity(ctx, sweet.ID, -6, baseTime)
		require.ErrorIs(t, err, model.ErrInsufficientStock)
		require.Equal(t, int64(5), current.Quantity)

		found, err := store.FindByID(ctx, sweet.ID)
		require.NoError(t, err)
		require.Equal(t, int64(5), found.Quantity)
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := store.AdjustQuantity(ctx, uuid.NewString(), 1, baseTime)
		require.ErrorIs(t, err, model.ErrSweetNotFound)
	})

	t.Run("overflow leaves the item unchanged", func(t *testing.T) {
		_, err := store.AdjustQuantity(ctx, sweet.ID, math.MaxInt64-4, baseTime)
		require.ErrorIs(t, err, model.ErrStockOverflow)

		found, err := store.FindByID(ctx, sweet.ID)
		require.NoError(t, err)
		require.Equal(t, int64(5), found.Quantity)

		topped, err := store.AdjustQuantity(ctx, sweet.ID, math.MaxInt64-5, baseTime)
		require.NoError(t, err)
		require.Equal(t, int64(math.MaxInt64), topped.Quantity)
	})
}

func TestSweetStore_ConcurrentPurchasesNeverOversell(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSweetStore()
	sweet := newSweet("Lollipop", "Candy", "0.99", 5)
	require.NoError(t, store.Create(ctx, sweet))

	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AdjustQuantity(ctx, sweet.ID, -1, baseTime)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrInsufficientStock):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 5, succeeded.Load())
	require.EqualValues(t, 3, rejected.Load())

	found, err := store.FindByID(ctx, sweet.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), found.Quantity)
}

func TestAuditStore_Query(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewAuditStore()

	for i := range 5 {
		action := model.AuditSweetPurchase
		if i%2 == 0 {
			action = model.AuditSweetRestock
		}
		require.NoError(t, store.Log(ctx, model.AuditEntry{
			Action:     action,
			OccurredAt: baseTime.Add(time.Duration(i) * time.Minute),
			Actor:      model.AuditActor{Email: "admin@example.com", Role: model.RoleAdmin},
			Resource:   "sweet-1",
		}))
	}

	items, meta, err := store.Query(ctx, model.AuditQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, baseTime.Add(4*time.Minute), items[0].OccurredAt)
	require.Equal(t, 5, meta.Total)
	require.Equal(t, 3, meta.TotalPages)

	items, meta, err = store.Query(ctx, model.AuditQuery{Action: "SWEET.PURCHASE"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, meta.Total)

	items, _, err = store.Query(ctx, model.AuditQuery{Actor: "someone@example.com"})
	require.NoError(t, err)
	require.Empty(t, items)

	items, _, err = store.Query(ctx, model.AuditQuery{Page: 9})
	require.NoError(t, err)
	require.Empty(t, items)

	items, _, err = store.Query(ctx, model.AuditQuery{Page: 50000000000000001, Limit: 200})
	require.NoError(t, err)
	require.Empty(t, items)

	items, _, err = store.Query(ctx, model.AuditQuery{Page: math.MaxInt, Limit: 1})
	require.NoError(t, err)
	require.Empty(t, items)
}
