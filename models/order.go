package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the durable record of a completed purchase. UserID is nil for
// anonymous checkouts. TotalPrice is fixed at placement time and never
// recomputed from later product price changes.
type Order struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name       string          `gorm:"size:200;not null" json:"name"`
	Phone      string          `gorm:"size:15;not null" json:"phone"`
	Address    string          `gorm:"not null" json:"address"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one line of an order. It is a historical record: quantity and
// price are captured at placement time and stay immutable regardless of what
// happens to the product afterwards.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
}
