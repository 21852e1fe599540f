package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"store-backend/apperrors"
	"store-backend/controllers"
	"store-backend/database"
	"store-backend/logger"
	"store-backend/middleware"
	"store-backend/models"
	"store-backend/repository"
	"store-backend/routes"
	"store-backend/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log := logger.Initialize(cfg.Env)
	defer log.Sync()

	db, err := database.ConnectPostgres(log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := models.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// --- Service wiring ---
	productRepo := repository.NewGormProductRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	categoryRepo := repository.NewGormCategoryRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	cartStore := repository.NewRedisCartStore(redisClient, cfg.CartTTL)

	inventoryService := services.NewInventoryService(productRepo, log)
	catalogService := services.NewCatalogService(productRepo, categoryRepo)
	cartService := services.NewCartService(cartStore, inventoryService, productRepo, log)
	orderService := services.NewOrderService(db, orderRepo, productRepo, cartStore, log, cfg.CheckoutTimeout)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, log)

	catalogController := controllers.NewCatalogController(catalogService, inventoryService)
	cartController := controllers.NewCartController(cartService)
	orderController := controllers.NewOrderController(orderService)
	authController := controllers.NewAuthController(authService)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(apperrors.ErrorMiddleware())
	r.Use(middleware.Session(int(cfg.CartTTL.Seconds())))

	routes.Register(r, catalogController, cartController, orderController, authController, authService)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Info("Store backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down store backend...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Store backend stopped gracefully")
}
