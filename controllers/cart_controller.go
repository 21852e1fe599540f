package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend/middleware"
	"store-backend/services"
)

// CartController serves the session cart API.
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// GetCart returns the rendered cart for the current session.
func (cc *CartController) GetCart(c *gin.Context) {
	view, err := cc.carts.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem increments the cart entry for a product. Quantity defaults to 1.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := cc.carts.Add(c.Request.Context(), middleware.SessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem decrements the cart entry for a product. The amount query
// parameter defaults to 1; the entry disappears when it reaches zero.
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid product id"})
		return
	}

	amount, err := strconv.Atoi(c.DefaultQuery("amount", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid amount"})
		return
	}

	cart, err := cc.carts.Remove(c.Request.Context(), middleware.SessionID(c), productID, amount)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart removes all items from the session's cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	if err := cc.carts.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
