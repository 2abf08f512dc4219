package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sweet-shop/internal/model"
	"sweet-shop/pkg/apierror"
)

type SweetStore interface {
	Create(ctx context.Context, sweet model.Sweet) error
	FindByID(ctx context.Context, id string) (model.Sweet, error)
	List(ctx context.Context, filter model.SweetFilter) ([]model.Sweet, error)
	Update(ctx context.Context, id string, patch model.SweetPatch, updatedAt time.Time) (model.Sweet, error)
	Delete(ctx context.Context, id string) (model.Sweet, error)
	// AdjustQuantity adds delta to the stock in one step. When the result
	// would go negative it returns the unchanged item and ErrInsufficientStock;
	// when it would not fit an int64 it returns ErrStockOverflow.
	AdjustQuantity(ctx context.Context, id string, delta int64, updatedAt time.Time) (model.Sweet, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, action model.AuditAction, actor model.AuditActor, resource string, before any, after any)
}

// SweetService is the inventory ledger.
type SweetService struct {
	store SweetStore
	audit AuditRecorder
	now   func() time.Time
}

func NewSweetService(store SweetStore, audit AuditRecorder) *SweetService {
	return &SweetService{store: store, audit: audit, now: time.Now}
}

func (s *SweetService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SweetService) Create(ctx context.Context, actor model.AuditActor, sweet model.Sweet) (model.Sweet, error) {
	sweet.Name = strings.TrimSpace(sweet.Name)
	sweet.Category = strings.TrimSpace(sweet.Category)

	if sweet.Name == "" {
		return model.Sweet{}, validationError("name", "name is required")
	}
	if sweet.Category == "" {
		return model.Sweet{}, validationError("category", "category is required")
	}
	if !sweet.Price.IsPositive() {
		return model.Sweet{}, validationError("price", "price must be greater than 0")
	}
	if err := checkStockLevel(sweet.Quantity); err != nil {
		return model.Sweet{}, err
	}

	now := s.now().UTC()
	sweet.ID = uuid.NewString()
	sweet.CreatedAt = now
	sweet.UpdatedAt = now

	if err := s.store.Create(ctx, sweet); err != nil {
		return model.Sweet{}, err
	}

	s.record(ctx, model.AuditSweetCreate, actor, sweet.ID, nil, sweet)
	return sweet, nil
}

func (s *SweetService) Get(ctx context.Context, id string) (model.Sweet, error) {
	id, ok := canonicalID(id)
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}
	return s.store.FindByID(ctx, id)
}

func (s *SweetService) List(ctx context.Context) ([]model.Sweet, error) {
	return s.store.List(ctx, model.SweetFilter{})
}

// Search applies every filter that is set. An inverted price range matches nothing.
func (s *SweetService) Search(ctx context.Context, filter model.SweetFilter) ([]model.Sweet, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.Category = strings.TrimSpace(filter.Category)

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return []model.Sweet{}, nil
	}

	return s.store.List(ctx, filter)
}

// Update changes only the supplied fields. An empty patch returns the item as is.
func (s *SweetService) Update(ctx context.Context, actor model.AuditActor, id string, patch model.SweetPatch) (model.Sweet, error) {
	id, ok := canonicalID(id)
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Sweet{}, validationError("name", "name must not be empty")
		}
		patch.Name = &name
	}
	if patch.Category != nil {
		category := strings.TrimSpace(*patch.Category)
		if category == "" {
			return model.Sweet{}, validationError("category", "category must not be empty")
		}
		patch.Category = &category
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return model.Sweet{}, validationError("price", "price must be greater than 0")
	}
	if patch.Quantity != nil {
		if err := checkStockLevel(*patch.Quantity); err != nil {
			return model.Sweet{}, err
		}
	}

	before, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Sweet{}, err
	}
	if patch.IsEmpty() {
		return before, nil
	}

	updated, err := s.store.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return model.Sweet{}, err
	}

	s.record(ctx, model.AuditSweetUpdate, actor, id, before, updated)
	return updated, nil
}

func (s *SweetService) Delete(ctx context.Context, actor model.AuditActor, id string) error {
	id, ok := canonicalID(id)
	if !ok {
		return model.ErrSweetNotFound
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.record(ctx, model.AuditSweetDelete, actor, id, deleted, nil)
	return nil
}

// Purchase removes quantity from stock. Concurrent purchases never take the
// stock below zero; the losing request gets a StockError.
func (s *SweetService) Purchase(ctx context.Context, actor model.AuditActor, id string, quantity int64) (model.Sweet, error) {
	if err := checkMovement(quantity); err != nil {
		return model.Sweet{}, err
	}
	id, ok := canonicalID(id)
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}

	sweet, err := s.store.AdjustQuantity(ctx, id, -quantity, s.now().UTC())
	if errors.Is(err, model.ErrInsufficientStock) {
		return model.Sweet{}, &model.StockError{Available: sweet.Quantity, Requested: quantity}
	}
	if err != nil {
		return model.Sweet{}, err
	}

	s.record(ctx, model.AuditSweetPurchase, actor, id, stockLevel(sweet.Quantity+quantity), stockLevel(sweet.Quantity))
	return sweet, nil
}

func (s *SweetService) Restock(ctx context.Context, actor model.AuditActor, id string, quantity int64) (model.Sweet, error) {
	if err := checkMovement(quantity); err != nil {
		return model.Sweet{}, err
	}
	id, ok := canonicalID(id)
	if !ok {
		return model.Sweet{}, model.ErrSweetNotFound
	}

	sweet, err := s.store.AdjustQuantity(ctx, id, quantity, s.now().UTC())
	if errors.Is(err, model.ErrStockOverflow) {
		return model.Sweet{}, validationError("quantity", "resulting stock is too large")
	}
	if err != nil {
		return model.Sweet{}, err
	}

	s.record(ctx, model.AuditSweetRestock, actor, id, stockLevel(sweet.Quantity-quantity), stockLevel(sweet.Quantity))
	return sweet, nil
}

func (s *SweetService) record(ctx context.Context, action model.AuditAction, actor model.AuditActor, resource string, before any, after any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, action, actor, resource, before, after)
}

type stockSnapshot struct {
	Quantity int64 `json:"quantity"`
}

func stockLevel(quantity int64) stockSnapshot {
	return stockSnapshot{Quantity: quantity}
}

func checkStockLevel(quantity int64) error {
	if quantity < 0 {
		return validationError("quantity", "quantity must be greater than or equal to 0")
	}
	return nil
}

func checkMovement(quantity int64) error {
	if quantity <= 0 {
		return validationError("quantity", "quantity must be greater than 0")
	}
	return nil
}

// canonicalID returns the lower-case hyphenated form of a UUID id. Anything
// that is not a UUID cannot name a stored item.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func validationError(field string, message string) error {
	return apierror.New("VALIDATION_ERROR", message, field, http.StatusUnprocessableEntity)
}
