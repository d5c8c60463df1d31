package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// ProductController handles HTTP requests for the catalog.
type ProductController struct {
	productService services.ProductService
	cache          *CacheManager
}

// NewProductController creates a new ProductController.
func NewProductController(productService services.ProductService, cache *CacheManager) *ProductController {
	return &ProductController{productService: productService, cache: cache}
}

// GetProducts handles GET /products with pagination and category filter.
func (pc *ProductController) GetProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	category := c.Query("category")

	if cached, hit := pc.cache.GetProductList(c.Request.Context(), page, limit, category); hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, svcErr := pc.productService.ListProducts(c.Request.Context(), services.ListProductsParams{
		Page:     page,
		Limit:    limit,
		Category: category,
	})
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	totalPages := int64(0)
	if limit > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	response := map[string]interface{}{
		"products": products,
		"meta": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	}

	pc.cache.SetProductListAsync(page, limit, category, response)
	c.JSON(http.StatusOK, response)
}

// GetProduct handles GET /products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if cached, hit := pc.cache.GetProduct(c.Request.Context(), id); hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	product, svcErr := pc.productService.GetProduct(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.SetProductAsync(product)
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products (staff/admin only).
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.ProductCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, svcErr := pc.productService.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.Invalidate(product.ID)
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id (staff/admin only).
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.ProductUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, svcErr := pc.productService.UpdateProduct(c.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.Invalidate(id)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id (staff/admin only).
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if svcErr := pc.productService.DeleteProduct(c.Request.Context(), id); svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.Invalidate(id)
	c.Status(http.StatusNoContent)
}

// GetProductRating handles GET /products/:id/rating. The summary includes
// the caller's own rating when the request carries a valid token.
func (pc *ProductController) GetProductRating(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var userID *int
	if principal, ok := middleware.GetPrincipal(c); ok {
		userID = &principal.UserID
	}

	summary, svcErr := pc.productService.GetRatingSummary(c.Request.Context(), id, userID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RateProduct handles POST /products/:id/rating.
func (pc *ProductController) RateProduct(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	summary, svcErr := pc.productService.SetRating(c.Request.Context(), id, principal.UserID, *req.Value)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.Invalidate(id)
	c.JSON(http.StatusCreated, summary)
}

// DeleteProductRating handles DELETE /products/:id/rating.
func (pc *ProductController) DeleteProductRating(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	summary, svcErr := pc.productService.DeleteRating(c.Request.Context(), id, principal.UserID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	pc.cache.Invalidate(id)
	c.JSON(http.StatusOK, summary)
}

// GetProductRatings handles GET /products/:id/ratings.
func (pc *ProductController) GetProductRatings(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ratings, svcErr := pc.productService.ListRatings(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// parsePaginationParams extracts and clamps pagination parameters.
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page := 1
	limit := 20

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}
