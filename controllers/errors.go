package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend/apperrors"
	"store-backend/repository"
	"store-backend/services"
)

// ErrorResponse is the structured error body returned by the JSON API.
// The optional fields are populated for stock-related validation failures
// so clients can re-render the cart without another round trip.
type ErrorResponse struct {
	Code         string     `json:"code"`
	Message      string     `json:"message"`
	ProductID    *uuid.UUID `json:"product_id,omitempty"`
	Available    *int       `json:"available,omitempty"`
	MaxAvailable *int       `json:"max_available,omitempty"`
	Retryable    bool       `json:"retryable,omitempty"`
}

// handleServiceError translates domain errors into API responses. Validation
// failures become 400s with machine-readable codes; transient placement
// failures are marked retryable; broken invariants surface as plain 500s.
func handleServiceError(c *gin.Context, err error) {
	var insufficient *services.InsufficientStockError
	var exceeded *services.StockExceededError

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "empty_cart", Message: "Cart is empty"})
	case errors.As(err, &insufficient):
		available := insufficient.Available
		productID := insufficient.ProductID
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:      "insufficient_stock",
			Message:   "Insufficient stock",
			ProductID: &productID,
			Available: &available,
		})
	case errors.As(err, &exceeded):
		max := exceeded.MaxAvailable
		productID := exceeded.ProductID
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:         "stock_exceeded",
			Message:      "Requested quantity exceeds available stock",
			ProductID:    &productID,
			MaxAvailable: &max,
		})
	case errors.Is(err, services.ErrNotInCart):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "not_in_cart", Message: "Product is not in the cart"})
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidContact):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()})
	case errors.Is(err, services.ErrOrderPlacementFailed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:      "order_placement_failed",
			Message:   "Order placement failed, please retry",
			Retryable: true,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "invalid_credentials", Message: "Invalid username or password"})
	case errors.Is(err, services.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Code: "username_taken", Message: "Username is already taken"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Code: "not_found", Message: "Not found"})
	default:
		// Includes repository.ErrNegativeStock: a broken invariant is an
		// internal defect, never a user-facing validation error.
		_ = c.Error(apperrors.ErrInternalServer.Wrap(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "internal_error", Message: "Internal server error"})
	}
}
