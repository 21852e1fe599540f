package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"store-backend/middleware"
	"store-backend/models"
	"store-backend/services"
)

// OrderController serves order placement and retrieval.
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type contactInfoRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type createOrderRequest struct {
	Items       []orderItemRequest `json:"items" binding:"dive"`
	ContactInfo contactInfoRequest `json:"contact_info" binding:"required"`
}

// CreateOrder places an order. An explicit items list places those lines
// directly (programmatic API); an empty list checks out the session cart
// (web flow). Identity is optional: without a valid token the order is
// anonymous.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid payload"})
		return
	}

	contact := services.ContactInfo{
		Name:    req.ContactInfo.Name,
		Phone:   req.ContactInfo.Phone,
		Address: req.ContactInfo.Address,
	}
	userID := middleware.UserID(c)

	var (
		order *models.Order
		err   error
	)
	if len(req.Items) == 0 {
		order, err = oc.orders.PlaceOrderFromCart(c.Request.Context(), middleware.SessionID(c), contact, userID)
	} else {
		lines := make([]services.OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, services.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		order, err = oc.orders.PlaceOrder(c.Request.Context(), lines, contact, userID)
	}

	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the authenticated user's orders, newest first.
func (oc *OrderController) ListOrders(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := oc.orders.GetUserOrders(c.Request.Context(), *userID, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder returns one of the authenticated user's orders.
func (oc *OrderController) GetOrder(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid order id"})
		return
	}

	order, err := oc.orders.GetUserOrder(c.Request.Context(), *userID, orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
