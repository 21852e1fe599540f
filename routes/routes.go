package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"store-backend/controllers"
	"store-backend/middleware"
	"store-backend/services"
)

// Register wires every HTTP route. Checkout uses optional auth so anonymous
// buyers are never turned away; order history and profile require a token.
func Register(
	r *gin.Engine,
	catalog *controllers.CatalogController,
	cart *controllers.CartController,
	order *controllers.OrderController,
	auth *controllers.AuthController,
	authService *services.AuthService,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api")
	{
		api.GET("/products", catalog.ListProducts)
		api.GET("/products/:id", catalog.GetProduct)
		api.GET("/products/:id/stock", catalog.GetProductStock)
		api.GET("/categories", catalog.ListCategories)

		cartGroup := api.Group("/cart")
		{
			cartGroup.GET("", cart.GetCart)
			cartGroup.POST("/add", cart.AddItem)
			cartGroup.DELETE("/remove/:product_id", cart.RemoveItem)
			cartGroup.DELETE("/clear", cart.ClearCart)
		}

		api.POST("/orders", middleware.OptionalAuth(authService), order.CreateOrder)

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(authService))
		{
			protected.GET("/orders", order.ListOrders)
			protected.GET("/orders/:id", order.GetOrder)
			protected.GET("/profile", auth.GetProfile)
			protected.PUT("/profile", auth.UpdateProfile)
		}

		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimit())
		{
			authGroup.POST("/register", auth.Register)
			authGroup.POST("/login", auth.Login)
		}
	}
}
