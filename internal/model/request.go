package model

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,min=1"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateSweetRequest struct {
	Name        string          `json:"name" validate:"required,min=1"`
	Category    string          `json:"category" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Quantity    int64           `json:"quantity" validate:"gte=0"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"image_url"`
}

func (r CreateSweetRequest) Sweet() Sweet {
	return Sweet{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

type UpdateSweetRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Quantity    *int64           `json:"quantity" validate:"omitempty,gte=0"`
	Description OptionalString   `json:"description"`
	ImageURL    OptionalString   `json:"image_url"`
}

func (r UpdateSweetRequest) Patch() SweetPatch {
	return SweetPatch{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Description: r.Description,
		ImageURL:    r.ImageURL,
	}
}

// QuantityRequest is the body of both purchase and restock.
type QuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"gt=0"`
}
