package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"store-backend/models"
	"store-backend/repository"
)

// memCartStore is an in-memory CartStore for tests.
type memCartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*models.Cart)}
}

func (m *memCartStore) GetCart(_ context.Context, sessionID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (m *memCartStore) SaveCart(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	m.carts[cart.SessionID] = &clone
	return nil
}

func (m *memCartStore) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

type orderTestEnv struct {
	db       *gorm.DB
	products repository.ProductRepository
	orders   repository.OrderRepository
	carts    *memCartStore
	svc      *OrderService
}

// newOrderTestEnv spins up an isolated in-memory database. The pool is
// pinned to a single connection so concurrent transactions serialize the
// same way contended row locks do in production.
func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, models.Migrate(db))

	products := repository.NewGormProductRepository(db)
	orders := repository.NewGormOrderRepository(db)
	carts := newMemCartStore()
	svc := NewOrderService(db, orders, products, carts, zap.NewNop(), 5*time.Second)

	return &orderTestEnv{db: db, products: products, orders: orders, carts: carts, svc: svc}
}

func (env *orderTestEnv) seedProduct(t *testing.T, name string, price string, stock int) *models.Product {
	t.Helper()

	category := models.Category{ID: uuid.New(), Name: "default"}
	require.NoError(t, env.db.FirstOrCreate(&category, models.Category{Name: "default"}).Error)

	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: category.ID,
	}
	require.NoError(t, env.products.Create(context.Background(), product))
	return product
}

func (env *orderTestEnv) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	stock, err := env.products.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return stock
}

func (env *orderTestEnv) orderCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

var testContact = ContactInfo{Name: "Ivan", Phone: "+79990001122", Address: "Lenina 1, Moscow"}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.svc.PlaceOrder(context.Background(), nil, testContact, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.EqualValues(t, 0, env.orderCount(t))
}

func TestPlaceOrder_InvalidContact(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "4.50", 10)

	for _, contact := range []ContactInfo{
		{Phone: "1", Address: "a"},
		{Name: "n", Address: "a"},
		{Name: "n", Phone: "1"},
		{Name: "   ", Phone: "1", Address: "a"},
	} {
		_, err := env.svc.PlaceOrder(context.Background(),
			[]OrderLine{{ProductID: p.ID, Quantity: 1}}, contact, nil)
		assert.ErrorIs(t, err, ErrInvalidContact)
	}

	assert.EqualValues(t, 0, env.orderCount(t))
	assert.Equal(t, 10, env.stockOf(t, p.ID))
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "4.50", 10)

	_, err := env.svc.PlaceOrder(context.Background(),
		[]OrderLine{{ProductID: p.ID, Quantity: 0}}, testContact, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.EqualValues(t, 0, env.orderCount(t))
}

func TestPlaceOrder_Success(t *testing.T) {
	env := newOrderTestEnv(t)
	mug := env.seedProduct(t, "mug", "9.99", 10)
	tea := env.seedProduct(t, "tea", "5.00", 3)

	userID := uuid.New()
	order, err := env.svc.PlaceOrder(context.Background(), []OrderLine{
		{ProductID: mug.ID, Quantity: 2},
		{ProductID: tea.ID, Quantity: 1},
	}, testContact, &userID)
	require.NoError(t, err)

	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("24.98")),
		"expected total 24.98, got %s", order.TotalPrice)
	assert.Len(t, order.Items, 2)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)

	assert.Equal(t, 8, env.stockOf(t, mug.ID))
	assert.Equal(t, 2, env.stockOf(t, tea.ID))
}

func TestPlaceOrder_AnonymousAllowed(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "9.99", 5)

	order, err := env.svc.PlaceOrder(context.Background(),
		[]OrderLine{{ProductID: p.ID, Quantity: 1}}, testContact, nil)
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
}

func TestPlaceOrder_MergesDuplicateLines(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "2.00", 10)

	order, err := env.svc.PlaceOrder(context.Background(), []OrderLine{
		{ProductID: p.ID, Quantity: 2},
		{ProductID: p.ID, Quantity: 3},
	}, testContact, nil)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, 5, env.stockOf(t, p.ID))
}

func TestPlaceOrder_InsufficientStock_NoPartialWrites(t *testing.T) {
	env := newOrderTestEnv(t)
	a := env.seedProduct(t, "a", "10.00", 1)
	b := env.seedProduct(t, "b", "20.00", 5)

	_, err := env.svc.PlaceOrder(context.Background(), []OrderLine{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
	}, testContact, nil)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, a.ID, insufficient.ProductID)
	assert.Equal(t, 2, insufficient.Requested)
	assert.Equal(t, 1, insufficient.Available)

	// No partial order, no partial decrement.
	assert.EqualValues(t, 0, env.orderCount(t))
	assert.Equal(t, 1, env.stockOf(t, a.ID))
	assert.Equal(t, 5, env.stockOf(t, b.ID))
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	env := newOrderTestEnv(t)

	missing := uuid.New()
	_, err := env.svc.PlaceOrder(context.Background(),
		[]OrderLine{{ProductID: missing, Quantity: 1}}, testContact, nil)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, missing, insufficient.ProductID)
	assert.Equal(t, 0, insufficient.Available)
}

func TestPlaceOrder_TotalFixedAtPlacementTime(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "9.99", 10)

	order, err := env.svc.PlaceOrder(context.Background(),
		[]OrderLine{{ProductID: p.ID, Quantity: 2}}, testContact, nil)
	require.NoError(t, err)

	// Reprice the product after the order committed.
	require.NoError(t, env.db.Model(&models.Product{}).
		Where("id = ?", p.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)

	fetched, err := env.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)

	expected := decimal.Zero
	for _, item := range fetched.Items {
		expected = expected.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, fetched.TotalPrice.Equal(expected))
	assert.True(t, fetched.TotalPrice.Equal(decimal.RequireFromString("19.98")),
		"total must reflect the placement-time price, got %s", fetched.TotalPrice)
}

func TestPlaceOrder_ConcurrentCheckouts_NeverOversell(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "last units", "10.00", 5)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.svc.PlaceOrder(context.Background(),
				[]OrderLine{{ProductID: p.ID, Quantity: 3}}, testContact, nil)
		}(i)
	}
	wg.Wait()

	var successes, stockFailures int
	for _, err := range results {
		var insufficient *InsufficientStockError
		switch {
		case err == nil:
			successes++
		case errors.As(err, &insufficient):
			stockFailures++
			assert.Equal(t, 3, insufficient.Requested)
			assert.Contains(t, []int{2, 5}, insufficient.Available,
				"loser sees either the pre- or post-commit stock, never a partial value")
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one checkout may win the last units")
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 2, env.stockOf(t, p.ID))
	assert.EqualValues(t, 1, env.orderCount(t))
}

func TestPlaceOrder_ExpiredDeadline_RetryableNoWrites(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "9.99", 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.svc.PlaceOrder(ctx,
		[]OrderLine{{ProductID: p.ID, Quantity: 2}}, testContact, nil)
	require.ErrorIs(t, err, ErrOrderPlacementFailed,
		"a dead context must surface as the retryable placement failure")

	assert.EqualValues(t, 0, env.orderCount(t))
	assert.Equal(t, 10, env.stockOf(t, p.ID))
}

func TestPlaceOrderFromCart_ClearsCartAfterCommit(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "3.00", 10)

	sessionID := uuid.NewString()
	require.NoError(t, env.carts.SaveCart(context.Background(), &models.Cart{
		SessionID: sessionID,
		Items:     []models.CartItem{{ProductID: p.ID, Quantity: 2}},
	}))

	order, err := env.svc.PlaceOrderFromCart(context.Background(), sessionID, testContact, nil)
	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("6.00")))

	cart, err := env.carts.GetCart(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, cart, "cart must be cleared after a committed order")
}

func TestPlaceOrderFromCart_EmptySession(t *testing.T) {
	env := newOrderTestEnv(t)

	_, err := env.svc.PlaceOrderFromCart(context.Background(), uuid.NewString(), testContact, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderFromCart_FailureKeepsCart(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "3.00", 1)

	sessionID := uuid.NewString()
	require.NoError(t, env.carts.SaveCart(context.Background(), &models.Cart{
		SessionID: sessionID,
		Items:     []models.CartItem{{ProductID: p.ID, Quantity: 2}},
	}))

	_, err := env.svc.PlaceOrderFromCart(context.Background(), sessionID, testContact, nil)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	cart, err := env.carts.GetCart(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, cart, "failed placement must not clear the cart")
	assert.Equal(t, 2, cart.Quantity(p.ID))
}

func TestDeleteOrder_CascadesItems(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "3.00", 10)

	order, err := env.svc.PlaceOrder(context.Background(),
		[]OrderLine{{ProductID: p.ID, Quantity: 1}}, testContact, nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteOrder(context.Background(), order.ID))

	_, err = env.svc.GetOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var itemCount int64
	require.NoError(t, env.db.Model(&models.OrderItem{}).
		Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 0, itemCount, "items must not outlive their order")
}

func TestGetUserOrders_Pagination(t *testing.T) {
	env := newOrderTestEnv(t)
	p := env.seedProduct(t, "mug", "1.00", 100)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := env.svc.PlaceOrder(context.Background(),
			[]OrderLine{{ProductID: p.ID, Quantity: 1}}, testContact, &userID)
		require.NoError(t, err)
	}

	resp, err := env.svc.GetUserOrders(context.Background(), userID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 2)
	assert.EqualValues(t, 3, resp.Meta.Total)
	assert.EqualValues(t, 2, resp.Meta.TotalPages)
	assert.True(t, resp.Meta.HasMore)
}
