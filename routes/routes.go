package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/nkozdemir/fakestore-backend/controllers"
	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/services"
)

// Controllers bundles everything RegisterRoutes wires up.
type Controllers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Carts      *controllers.CartController
}

// RegisterRoutes sets up all API routes. Catalog reads are public; cart and
// user routes require a principal; catalog writes require an operator.
func RegisterRoutes(r *gin.Engine, c Controllers, tokens *services.TokenService) {
	authLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/30), 10)

	auth := r.Group("/auth")
	auth.Use(middleware.RateLimit(authLimiter))
	auth.POST("/register", c.Auth.Register)
	auth.POST("/login", c.Auth.Login)
	auth.POST("/refresh", c.Auth.Refresh)
	auth.GET("/validate-username", c.Auth.ValidateUsername)
	auth.GET("/me", middleware.RequireAuth(tokens), c.Auth.Me)

	products := r.Group("/products")
	products.GET("", c.Products.GetProducts)
	products.GET("/:id", c.Products.GetProduct)
	products.GET("/:id/rating", middleware.OptionalAuth(tokens), c.Products.GetProductRating)
	products.GET("/:id/ratings", c.Products.GetProductRatings)

	ratingWrites := products.Group("")
	ratingWrites.Use(middleware.RequireAuth(tokens))
	ratingWrites.POST("/:id/rating", c.Products.RateProduct)
	ratingWrites.DELETE("/:id/rating", c.Products.DeleteProductRating)

	productWrites := products.Group("")
	productWrites.Use(middleware.RequireAuth(tokens), middleware.RequireOperator())
	productWrites.POST("", c.Products.CreateProduct)
	productWrites.PUT("/:id", c.Products.UpdateProduct)
	productWrites.DELETE("/:id", c.Products.DeleteProduct)

	categories := r.Group("/categories")
	categories.GET("", c.Categories.GetCategories)
	categories.GET("/:id", c.Categories.GetCategory)

	categoryWrites := categories.Group("")
	categoryWrites.Use(middleware.RequireAuth(tokens), middleware.RequireOperator())
	categoryWrites.POST("", c.Categories.CreateCategory)
	categoryWrites.PUT("/:id", c.Categories.UpdateCategory)
	categoryWrites.DELETE("/:id", c.Categories.DeleteCategory)

	users := r.Group("/users")
	users.Use(middleware.RequireAuth(tokens))
	users.GET("", c.Users.GetUsers)
	users.GET("/:id", c.Users.GetUser)
	users.PUT("/:id", c.Users.UpdateUser)
	users.DELETE("/:id", c.Users.DeleteUser)

	carts := r.Group("/carts")
	carts.Use(middleware.RequireAuth(tokens))
	carts.GET("", c.Carts.GetCarts)
	carts.POST("", c.Carts.CreateCart)
	carts.GET("/:id", c.Carts.GetCart)
	carts.PUT("/:id", c.Carts.ReplaceCart)
	carts.PATCH("/:id", c.Carts.PatchCart)
	carts.DELETE("/:id", c.Carts.DeleteCart)
}
