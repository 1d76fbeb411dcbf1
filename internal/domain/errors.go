package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a stock decrement exceeds the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStatus indicates an unknown order status.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrConflict indicates a unique key (slug, SKU, product size) is already taken.
	ErrConflict = errors.New("already exists")
)
