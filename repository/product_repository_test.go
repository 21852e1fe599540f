package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"store-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) (books, games uuid.UUID) {
	t.Helper()

	booksCat := models.Category{ID: uuid.New(), Name: "books"}
	gamesCat := models.Category{ID: uuid.New(), Name: "games", ParentID: nil}
	require.NoError(t, db.Create(&booksCat).Error)
	require.NoError(t, db.Create(&gamesCat).Error)

	repo := NewGormProductRepository(db)
	for _, p := range []models.Product{
		{Name: "Go in Action", Price: decimal.RequireFromString("35.00"), Stock: 4, CategoryID: booksCat.ID},
		{Name: "The Go Programming Language", Price: decimal.RequireFromString("42.50"), Stock: 2, CategoryID: booksCat.ID},
		{Name: "Chess Set", Price: decimal.RequireFromString("15.00"), Stock: 9, CategoryID: gamesCat.ID},
	} {
		product := p
		require.NoError(t, repo.Create(context.Background(), &product))
	}
	return booksCat.ID, gamesCat.ID
}

func TestListProducts_TextQuery(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	products, total, err := repo.List(context.Background(), ListProductsParams{Query: "go"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, p := range products {
		assert.Contains(t, []string{"Go in Action", "The Go Programming Language"}, p.Name)
	}
}

func TestListProducts_PriceBounds(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	min := decimal.RequireFromString("20.00")
	max := decimal.RequireFromString("40.00")
	products, total, err := repo.List(context.Background(), ListProductsParams{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Go in Action", products[0].Name)
}

func TestListProducts_CategoryFilter(t *testing.T) {
	db := newTestDB(t)
	booksID, _ := seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	_, total, err := repo.List(context.Background(), ListProductsParams{CategoryID: &booksID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestListProducts_StablePagination(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	first, total, err := repo.List(context.Background(), ListProductsParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, first, 2)

	second, _, err := repo.List(context.Background(), ListProductsParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)

	// Re-running the same page yields the same rows.
	firstAgain, _, err := repo.List(context.Background(), ListProductsParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstAgain, 2)
	assert.Equal(t, first[0].ID, firstAgain[0].ID)
	assert.Equal(t, first[1].ID, firstAgain[1].ID)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(first, second...) {
		assert.False(t, seen[p.ID], "pages must not overlap")
		seen[p.ID] = true
	}
}

func TestDecrementStock_Guard(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	products, _, err := repo.List(context.Background(), ListProductsParams{Query: "chess"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	p := products[0]

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.DecrementStock(tx, p.ID, 4)
	}))

	stock, err := repo.GetStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	// A decrement past the remaining stock trips the guard and changes
	// nothing.
	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.DecrementStock(tx, p.ID, 6)
	})
	assert.ErrorIs(t, err, ErrNegativeStock)

	stock, err = repo.GetStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
}

func TestIncrementStock(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	repo := NewGormProductRepository(db)

	products, _, err := repo.List(context.Background(), ListProductsParams{Query: "chess"})
	require.NoError(t, err)
	p := products[0]

	require.NoError(t, repo.IncrementStock(context.Background(), p.ID, 3))
	stock, err := repo.GetStock(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stock)

	assert.ErrorIs(t, repo.IncrementStock(context.Background(), uuid.New(), 1), ErrNotFound)
}

func TestFindByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
