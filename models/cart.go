package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one desired-purchase line in a session cart.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is the ephemeral per-session purchase list. It lives in Redis as a
// JSON blob and holds no authoritative stock information.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Quantity returns the current quantity for a product, zero if absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// SetQuantity updates the line for a product, inserting it when new and
// dropping it when the quantity falls to zero or below.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	for i, item := range c.Items {
		if item.ProductID == productID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			return
		}
	}
	if quantity > 0 {
		c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity})
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartLine is a display row produced by the cart view: the product joined
// with the desired quantity and the resulting line total.
type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartView is the rendered cart: all lines plus the aggregate total.
type CartView struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}
