package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"store-backend/models"
	"store-backend/repository"
)

// OrderLine is one requested (product, quantity) pair of a checkout.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ContactInfo is the buyer-supplied delivery contact. Fields are opaque
// strings, validated only for non-emptiness.
type ContactInfo struct {
	Name    string
	Phone   string
	Address string
}

// Validate checks that every contact field is present.
func (c ContactInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Phone) == "" ||
		strings.TrimSpace(c.Address) == "" {
		return ErrInvalidContact
	}
	return nil
}

// OrderResponse is a paginated order listing.
type OrderResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// MetaData carries pagination bookkeeping for list responses.
type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderService turns validated purchase lines into durable orders without
// ever overselling inventory. Validation, order creation and stock decrement
// run in a single transaction holding exclusive row locks on the affected
// products, so concurrent checkouts of the same product serialize instead of
// racing a stale stock read.
type OrderService struct {
	db            *gorm.DB
	orders        repository.OrderRepository
	products      repository.ProductRepository
	carts         repository.CartStore
	log           *zap.Logger
	commitTimeout time.Duration
}

// NewOrderService creates a new OrderService. commitTimeout bounds how long a
// placement may wait on row locks before failing as retryable.
func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartStore,
	log *zap.Logger,
	commitTimeout time.Duration,
) *OrderService {
	return &OrderService{
		db:            db,
		orders:        orders,
		products:      products,
		carts:         carts,
		log:           log,
		commitTimeout: commitTimeout,
	}
}

// PlaceOrder validates the lines against current stock and atomically
// creates the order, its items and the matching stock decrements. On any
// failure nothing is written.
//
// The returned error is one of: ErrEmptyCart, ErrInvalidQuantity,
// ErrInvalidContact, *InsufficientStockError, repository.ErrNegativeStock
// (broken invariant, wrapped), or ErrOrderPlacementFailed (transient,
// wrapped; caller may retry from validation).
func (s *OrderService) PlaceOrder(ctx context.Context, lines []OrderLine, contact ContactInfo, userID *uuid.UUID) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	var placed *models.Order
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(merged))

		// Lock products in ascending ID order so concurrent multi-product
		// checkouts cannot deadlock.
		for _, line := range merged {
			product, err := s.products.FindForUpdate(tx, line.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				return &InsufficientStockError{ProductID: line.ProductID, Requested: line.Quantity, Available: 0}
			}
			if err != nil {
				return err
			}
			if line.Quantity > product.Stock {
				return &InsufficientStockError{ProductID: product.ID, Requested: line.Quantity, Available: product.Stock}
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
		}

		order := &models.Order{
			UserID:     userID,
			Name:       contact.Name,
			Phone:      contact.Phone,
			Address:    contact.Address,
			TotalPrice: total,
			Items:      items,
		}
		if err := s.orders.Create(tx, order); err != nil {
			return err
		}

		for _, line := range merged {
			if err := s.products.DecrementStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		placed = order
		return nil
	})

	if txErr != nil {
		var insufficient *InsufficientStockError
		switch {
		case errors.As(txErr, &insufficient):
			return nil, txErr
		case errors.Is(txErr, repository.ErrNegativeStock):
			// The decrement guard tripped while we held the row lock. That
			// means the locking discipline is broken somewhere, not that the
			// user asked for too much.
			s.log.Error("stock invariant violated during committed decrement",
				zap.Error(txErr))
			return nil, fmt.Errorf("stock invariant violated: %w", txErr)
		default:
			s.log.Warn("order placement aborted", zap.Error(txErr))
			return nil, fmt.Errorf("%w: %v", ErrOrderPlacementFailed, txErr)
		}
	}

	s.log.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.TotalPrice.String()),
	)
	return placed, nil
}

// PlaceOrderFromCart loads the session cart, places the order, and clears
// the cart only after the commit succeeds.
func (s *OrderService) PlaceOrderFromCart(ctx context.Context, sessionID string, contact ContactInfo, userID *uuid.UUID) (*models.Order, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderPlacementFailed, err)
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.PlaceOrder(ctx, lines, contact, userID)
	if err != nil {
		return nil, err
	}

	// The order is durable at this point. A failed cart delete leaves a
	// stale cart behind but never undoes the order.
	if err := s.carts.DeleteCart(ctx, sessionID); err != nil {
		s.log.Warn("failed to clear cart after order placement",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.FindByID(ctx, orderID)
}

// GetUserOrder retrieves a specific order scoped to its owner.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return s.orders.FindByIDAndUserID(ctx, orderID, userID)
}

// GetUserOrders retrieves paginated orders for a specific user.
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	orders, total, err := s.orders.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return &OrderResponse{
		Orders: orders,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}, nil
}

// DeleteOrder removes an order together with its items.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return s.orders.Delete(ctx, orderID)
}

// mergeLines collapses duplicate product lines and rejects non-positive
// quantities, returning the result sorted by product ID.
func mergeLines(lines []OrderLine) ([]OrderLine, error) {
	byProduct := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		byProduct[line.ProductID] += line.Quantity
	}

	merged := make([]OrderLine, 0, len(byProduct))
	for id, qty := range byProduct {
		merged = append(merged, OrderLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ProductID.String() < merged[j].ProductID.String()
	})
	return merged, nil
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
