package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNegativeStock is returned when a stock decrement would drive the
	// count below zero. Under correct row locking this is unreachable; if it
	// surfaces it indicates a broken invariant, not a user error.
	ErrNegativeStock = errors.New("stock decrement would go negative")
)
