package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Sweet struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON writes the price as a JSON number (2.99) rather than a string.
func (s Sweet) MarshalJSON() ([]byte, error) {
	type plain Sweet
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain: plain(s), Price: json.Number(s.Price.String())})
}

// OptionalString tells a JSON field that is absent (Set is false) from one
// sent as null (Set is true, Value is nil).
type OptionalString struct {
	Set   bool
	Value *string
}

func SetString(value string) OptionalString {
	return OptionalString{Set: true, Value: &value}
}

func ClearString() OptionalString {
	return OptionalString{Set: true}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

func (o OptionalString) apply(current *string) *string {
	if !o.Set {
		return current
	}
	if o.Value == nil {
		return nil
	}
	value := *o.Value
	return &value
}

// SweetPatch holds the fields of a partial update. A nil field is left
// untouched; the optional text fields can also be cleared.
type SweetPatch struct {
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	Quantity    *int64
	Description OptionalString
	ImageURL    OptionalString
}

func (p SweetPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && !p.Description.Set && !p.ImageURL.Set
}

// Apply returns a copy of s with every supplied field replaced.
func (p SweetPatch) Apply(s Sweet) Sweet {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	s.Description = p.Description.apply(s.Description)
	s.ImageURL = p.ImageURL.apply(s.ImageURL)
	return s
}

type SweetFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Matches reports whether s satisfies every filter that is set.
func (f SweetFilter) Matches(s Sweet) bool {
	if name := strings.TrimSpace(f.Name); name != "" &&
		!strings.Contains(strings.ToLower(s.Name), strings.ToLower(name)) {
		return false
	}
	if category := strings.TrimSpace(f.Category); category != "" &&
		!strings.Contains(strings.ToLower(s.Category), strings.ToLower(category)) {
		return false
	}
	if f.MinPrice != nil && s.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && s.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
