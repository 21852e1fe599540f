package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart is returned when an order is placed with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotInCart is returned when removing a product the cart does not hold.
	ErrNotInCart = errors.New("product is not in the cart")

	// ErrInvalidQuantity is returned for line quantities below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInvalidContact is returned when the contact form is incomplete.
	ErrInvalidContact = errors.New("name, phone and address are required")

	// ErrOrderPlacementFailed wraps transient commit failures. The operation
	// left no partial writes and may be retried after re-validating the cart.
	ErrOrderPlacementFailed = errors.New("order placement failed")

	// ErrInvalidCredentials is returned on failed logins.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username is already taken")
)

// InsufficientStockError reports a checkout line that asked for more units
// than the product currently has. No writes were performed.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested=%d available=%d",
		e.ProductID, e.Requested, e.Available)
}

// StockExceededError reports a cart add that would push the desired quantity
// past the product's current stock. The cart was not mutated.
type StockExceededError struct {
	ProductID    uuid.UUID
	MaxAvailable int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for product %s: max available=%d",
		e.ProductID, e.MaxAvailable)
}
