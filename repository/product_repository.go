package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-backend/models"
)

// ListProductsParams are the optional catalog filters.
type ListProductsParams struct {
	Query      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// ProductRepository defines the interface for product and stock data access.
// The ForUpdate/Decrement pair takes the caller's transaction handle so the
// order workflow can hold row locks across validation and decrement.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, params ListProductsParams) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	GetStock(ctx context.Context, id uuid.UUID) (int, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new instance of GormProductRepository
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// List applies the optional filters and returns a stable page of products
// plus the unpaginated match count. Ordering is newest-first with the id as
// tiebreaker so pagination is restartable.
func (r *GormProductRepository) List(ctx context.Context, params ListProductsParams) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if params.Query != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Query+"%")
	}
	if params.MinPrice != nil {
		query = query.Where("price >= ?", params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", params.MaxPrice)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", params.CategoryID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 20
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC, id").
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) GetStock(ctx context.Context, id uuid.UUID) (int, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// FindForUpdate loads a product under an exclusive row lock inside the
// caller's transaction. The lock is held until the transaction ends.
func (r *GormProductRepository) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// DecrementStock subtracts quantity from the product's stock inside the
// caller's transaction. The stock >= quantity guard re-verifies availability
// at write time; zero affected rows means the decrement would have gone
// negative.
func (r *GormProductRepository) DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNegativeStock
	}
	return nil
}

// IncrementStock restocks a product. Administrative path, not used by the
// checkout workflow.
func (r *GormProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
