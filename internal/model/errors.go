package model

import (
	"errors"
	"fmt"
)

var (
	// Account related errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")

	// Token related errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")

	// Access related errors
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrForbidden       = errors.New("not enough permissions")

	// Inventory related errors
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrInsufficientStock = errors.New("insufficient quantity")
	ErrStockOverflow     = errors.New("stock level out of range")
)

// StockError is returned when a purchase asks for more than is on hand.
type StockError struct {
	Available int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient quantity. Available: %d, Requested: %d", e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
