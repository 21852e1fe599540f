package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"store-backend/repository"
	"store-backend/services"
)

// CatalogController serves the read-only product and category API.
type CatalogController struct {
	catalog   *services.CatalogService
	inventory *services.InventoryService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog *services.CatalogService, inventory *services.InventoryService) *CatalogController {
	return &CatalogController{catalog: catalog, inventory: inventory}
}

// ListProducts returns a filtered, paginated catalog page.
func (cc *CatalogController) ListProducts(c *gin.Context) {
	params := repository.ListProductsParams{
		Query: c.Query("q"),
	}

	if raw := c.Query("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid min_price"})
			return
		}
		params.MinPrice = &price
	}
	if raw := c.Query("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid max_price"})
			return
		}
		params.MaxPrice = &price
	}
	if raw := c.Query("category"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid category id"})
			return
		}
		params.CategoryID = &categoryID
	}

	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := cc.catalog.ListProducts(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct returns a single product.
func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid product id"})
		return
	}

	product, err := cc.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetProductStock returns the advisory stock count for a product.
func (cc *CatalogController) GetProductStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid product id"})
		return
	}

	stock, err := cc.inventory.GetStock(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "stock": stock})
}

// ListCategories returns the flat category list with parent references.
func (cc *CatalogController) ListCategories(c *gin.Context) {
	categories, err := cc.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
