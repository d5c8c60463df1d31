package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// CategoryController handles HTTP requests for catalog categories.
type CategoryController struct {
	productService services.ProductService
}

// NewCategoryController creates a new CategoryController.
func NewCategoryController(productService services.ProductService) *CategoryController {
	return &CategoryController{productService: productService}
}

// GetCategories handles GET /categories.
func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, svcErr := cc.productService.ListCategories(c.Request.Context())
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /categories/:id.
func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, svcErr := cc.productService.GetCategory(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /categories/:id (staff/admin only).
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, svcErr := cc.productService.UpdateCategory(c.Request.Context(), id, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /categories (staff/admin only).
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, svcErr := cc.productService.CreateCategory(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory handles DELETE /categories/:id (staff/admin only).
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if svcErr := cc.productService.DeleteCategory(c.Request.Context(), id); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.Status(http.StatusNoContent)
}
