// Package memory holds mutex-guarded stores with the same contracts as the
// Postgres repositories. They back STORAGE_DRIVER=memory and the HTTP tests.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"sweet-shop/internal/model"
)

type AccountStore struct {
	mu      sync.RWMutex
	byEmail map[string]model.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{byEmail: make(map[string]model.Account)}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountStore) Create(_ context.Context, account model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(account.Email)
	if _, exists := s.byEmail[key]; exists {
		return model.ErrDuplicateEmail
	}
	s.byEmail[key] = account
	return nil
}

func (s *AccountStore) FindByEmail(_ context.Context, email string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byEmail[emailKey(email)]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *AccountStore) SetRole(_ context.Context, id string, role model.Role, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, account := range s.byEmail {
		if account.ID == id {
			account.Role = role
			account.UpdatedAt = updatedAt
			s.byEmail[key] = account
			return nil
		}
	}
	return model.ErrAccountNotFound
}

type SweetStore struct {
	mu     sync.RWMutex
	sweets map[string]model.Sweet
	order  []string
}

func NewSweetStore() *SweetStore {
	return &SweetStore{sweets: make(map[string]model.Sweet)}
}

func (s *SweetStore) Create(_ context.Context, sweet model.Sweet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweets[sweet.ID] = cloneSweet(sweet)
	s.order = append(s.order, sweet.ID)
	return nil
}

func (s *SweetStore) FindByID(_ context.Context, id string) (model.Sweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sweet, ok := s.sweets[id]
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	return cloneSweet(sweet), nil
}

// List returns matching items in creation order.
func (s *SweetStore) List(_ context.Context, filter model.SweetFilter) ([]model.Sweet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]model.Sweet, 0, len(s.order))
	for _, id := range s.order {
		sweet := s.sweets[id]
		if filter.Matches(sweet) {
			items = append(items, cloneSweet(sweet))
		}
	}
	return items, nil
}

func (s *SweetStore) Update(_ context.Context, id string, patch model.SweetPatch, updatedAt time.Time) (model.Sweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweet, ok := s.sweets[id]
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}

	sweet = patch.Apply(sweet)
	sweet.UpdatedAt = updatedAt
	s.sweets[id] = sweet
	return cloneSweet(sweet), nil
}

func (s *SweetStore) Delete(_ context.Context, id string) (model.Sweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweet, ok := s.sweets[id]
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}

	delete(s.sweets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return sweet, nil
}

func (s *SweetStore) AdjustQuantity(_ context.Context, id string, delta int64, updatedAt time.Time) (model.Sweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sweet, ok := s.sweets[id]
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	if delta > 0 && sweet.Quantity > math.MaxInt64-delta {
		return cloneSweet(sweet), model.ErrStockOverflow
	}
	if sweet.Quantity+delta < 0 {
		return cloneSweet(sweet), model.ErrInsufficientStock
	}

	sweet.Quantity += delta
	sweet.UpdatedAt = updatedAt
	s.sweets[id] = sweet
	return cloneSweet(sweet), nil
}

func cloneSweet(sweet model.Sweet) model.Sweet {
	if sweet.Description != nil {
		description := *sweet.Description
		sweet.Description = &description
	}
	if sweet.ImageURL != nil {
		imageURL := *sweet.ImageURL
		sweet.ImageURL = &imageURL
	}
	return sweet
}

type AuditStore struct {
	mu      sync.RWMutex
	entries []model.AuditEntry
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

// Query returns matching entries newest first.
func (s *AuditStore) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	query = query.Normalize()
	action := strings.ToLower(strings.TrimSpace(query.Action))
	actor := emailKey(query.Actor)
	resource := strings.ToLower(strings.TrimSpace(query.Resource))

	s.mu.RLock()
	items := make([]model.AuditEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if action != "" && strings.ToLower(string(entry.Action)) != action {
			continue
		}
		if actor != "" && emailKey(entry.Actor.Email) != actor {
			continue
		}
		if resource != "" && !strings.Contains(strings.ToLower(entry.Resource), resource) {
			continue
		}
		items = append(items, entry)
	}
	s.mu.RUnlock()

	sort.SliceStable(items, func(i int, j int) bool {
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})

	total := len(items)
	start := min(query.Offset(), total)
	end := min(start+query.Limit, total)

	return items[start:end], model.NewMeta(query.Page, query.Limit, total), nil
}
