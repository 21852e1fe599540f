package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"store-backend/models"
	"store-backend/repository"
)

// ProductListResponse is a paginated catalog page.
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

// CatalogService is the read-only query layer over products and categories.
// Results reflect inventory at time of read; they are advisory for display
// and re-validated authoritatively at order placement.
type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) *CatalogService {
	return &CatalogService{products: products, categories: categories}
}

// ListProducts returns a stable, restartable page of products matching the
// optional text query, price bounds and category filter.
func (s *CatalogService) ListProducts(ctx context.Context, params repository.ListProductsParams) (*ProductListResponse, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}

	products, total, err := s.products.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductListResponse{
		Products: products,
		Meta: MetaData{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, params.Limit),
			HasMore:    total > int64(params.Page*params.Limit),
		},
	}, nil
}

// GetProduct retrieves a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// ListCategories returns the full category list with parent references.
// Tree assembly is left to the presentation layer.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAll(ctx)
}
