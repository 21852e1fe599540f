package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"store-backend/repository"
)

// StockCheckResult reports stock availability for a single product.
type StockCheckResult struct {
	ProductID    uuid.UUID `json:"product_id"`
	Available    int       `json:"available"`
	Requested    int       `json:"requested"`
	IsSufficient bool      `json:"is_sufficient"`
}

// InventoryService handles authoritative stock bookkeeping. Reads here are
// advisory: the order workflow re-verifies availability under row locks at
// commit time.
type InventoryService struct {
	products repository.ProductRepository
	log      *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(products repository.ProductRepository, log *zap.Logger) *InventoryService {
	return &InventoryService{products: products, log: log}
}

// GetStock returns the current stock count for a product.
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.products.GetStock(ctx, productID)
}

// CheckStock checks whether the requested quantity is currently available.
func (s *InventoryService) CheckStock(ctx context.Context, productID uuid.UUID, quantity int) (*StockCheckResult, error) {
	stock, err := s.products.GetStock(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check stock for product=%s: %w", productID, err)
	}

	return &StockCheckResult{
		ProductID:    productID,
		Available:    stock,
		Requested:    quantity,
		IsSufficient: stock >= quantity,
	}, nil
}

// Restock adds units to a product's stock. Administrative operation, never
// invoked by the checkout path.
func (s *InventoryService) Restock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := s.products.IncrementStock(ctx, productID, quantity); err != nil {
		return err
	}
	s.log.Info("stock replenished",
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
	)
	return nil
}
