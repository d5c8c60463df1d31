package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nkozdemir/fakestore-backend/controllers"
	"github.com/nkozdemir/fakestore-backend/database"
	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/repository"
	"github.com/nkozdemir/fakestore-backend/routes"
	"github.com/nkozdemir/fakestore-backend/services"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// --- Database ---
	if err := database.Connect(cfg.PostgresDSN()); err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Category{},
		&models.Product{},
		&models.Rating{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	// --- Redis (non-fatal: catalog cache degrades to pass-through) ---
	var cache *controllers.CacheManager
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("Redis connection failed, catalog cache disabled", zap.Error(err))
		} else {
			cache = controllers.NewCacheManager(rdb)
		}
	}
	if cache == nil {
		cache = controllers.NewCacheManager(nil)
	}

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.CORSAllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- Dependency injection ---
	tokens := services.NewTokenService(cfg.JWTSecret, 15*time.Minute, 7*24*time.Hour)

	userRepo := repository.NewGormUserRepository(database.DB)
	cartRepo := repository.NewGormCartRepository(database.DB)
	productRepo := repository.NewGormProductRepository(database.DB)
	categoryRepo := repository.NewGormCategoryRepository(database.DB)
	ratingRepo := repository.NewGormRatingRepository(database.DB)

	authService := services.NewAuthService(userRepo, cartRepo, tokens, logger)
	userService := services.NewUserService(userRepo, cartRepo, logger)
	cartService := services.NewCartService(cartRepo, userRepo, logger)
	productService := services.NewProductService(productRepo, categoryRepo, ratingRepo, logger)

	routes.RegisterRoutes(r, routes.Controllers{
		Auth:       controllers.NewAuthController(authService, userService),
		Users:      controllers.NewUserController(userService),
		Products:   controllers.NewProductController(productService, cache),
		Categories: controllers.NewCategoryController(productService),
		Carts:      controllers.NewCartController(cartService),
	}, tokens)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "fakestore-backend"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Storefront backend started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	log.Println("Storefront backend stopped gracefully")
}
