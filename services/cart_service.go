package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"store-backend/models"
	"store-backend/repository"
)

// CartService tracks desired quantities per product within a session. The
// cart itself holds no locks: it is scoped to one session and mutated by one
// request at a time. Stock reads during Add are advisory only; the order
// workflow is the sole authority at placement time.
type CartService struct {
	store     repository.CartStore
	inventory *InventoryService
	products  repository.ProductRepository
	log       *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(store repository.CartStore, inventory *InventoryService, products repository.ProductRepository, log *zap.Logger) *CartService {
	return &CartService{
		store:     store,
		inventory: inventory,
		products:  products,
		log:       log,
	}
}

// Add increments the cart entry for a product by delta, refusing to exceed
// the product's current stock. On refusal the cart is left untouched and a
// *StockExceededError carries the maximum quantity the cart could hold.
func (s *CartService) Add(ctx context.Context, sessionID string, productID uuid.UUID, delta int) (*models.Cart, error) {
	if delta < 1 {
		return nil, ErrInvalidQuantity
	}

	check, err := s.inventory.CheckStock(ctx, productID, delta)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart = &models.Cart{SessionID: sessionID}
	}

	current := cart.Quantity(productID)
	if current+delta > check.Available {
		return nil, &StockExceededError{ProductID: productID, MaxAvailable: check.Available}
	}

	cart.SetQuantity(productID, current+delta)
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove decrements the cart entry for a product by amount, deleting the
// entry once the quantity reaches zero. Removing an absent product fails
// with ErrNotInCart.
func (s *CartService) Remove(ctx context.Context, sessionID string, productID uuid.UUID, amount int) (*models.Cart, error) {
	if amount < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.store.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.Quantity(productID) == 0 {
		return nil, ErrNotInCart
	}

	cart.SetQuantity(productID, cart.Quantity(productID)-amount)
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// View joins the cart with the catalog and returns display lines plus the
// aggregate total. Pure read. Products withdrawn from the catalog since they
// were added are skipped.
func (s *CartService) View(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.store.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{Lines: []models.CartLine{}, Total: decimal.Zero}
	if cart == nil {
		return view, nil
	}

	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("cart references missing product",
				zap.String("product_id", item.ProductID.String()))
			continue
		}
		if err != nil {
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, models.CartLine{
			Product:   *product,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
	}

	return view, nil
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.DeleteCart(ctx, sessionID)
}
