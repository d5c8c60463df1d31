package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// CartController handles HTTP requests for cart operations.
type CartController struct {
	cartService services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCarts handles GET /carts. The owner filter is read from the canonical
// "userId" query parameter; "user_id" is accepted as an alias.
func (cc *CartController) GetCarts(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}

	var ownerFilter *int
	raw := c.Query("userId")
	if raw == "" {
		raw = c.Query("user_id")
	}
	if raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, services.NewValidationError("Invalid user identifier", map[string]interface{}{"userId": raw}))
			return
		}
		ownerFilter = &id
	}

	carts, svcErr := cc.cartService.ListCarts(c.Request.Context(), principal, ownerFilter)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	out := make([]*models.CartResponse, 0, len(carts))
	for i := range carts {
		out = append(out, models.ToCartResponse(&carts[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetCart handles GET /carts/:id.
func (cc *CartController) GetCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	cartID, ok := parseIDParam(c)
	if !ok {
		return
	}

	cart, svcErr := cc.cartService.GetCart(c.Request.Context(), principal, cartID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, models.ToCartResponse(cart))
}

// CreateCart handles POST /carts.
func (cc *CartController) CreateCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}

	var req models.CartCreateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	cart, svcErr := cc.cartService.CreateCart(c.Request.Context(), principal, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, models.ToCartResponse(cart))
}

// PatchCart handles PATCH /carts/:id: a batch of add/update/remove line-item
// operations plus optional date and owner changes, applied atomically.
func (cc *CartController) PatchCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	cartID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var batch models.CartPatchRequest
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondBindError(c, err)
		return
	}
	batch.Normalize()

	cart, svcErr := cc.cartService.PatchCart(c.Request.Context(), principal, cartID, &batch)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, models.ToCartResponse(cart))
}

// ReplaceCart handles PUT /carts/:id, a full rebuild of the item set.
func (cc *CartController) ReplaceCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	cartID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.CartReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, svcErr := cc.cartService.ReplaceCart(c.Request.Context(), principal, cartID, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, models.ToCartResponse(cart))
}

// DeleteCart handles DELETE /carts/:id.
func (cc *CartController) DeleteCart(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	cartID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if svcErr := cc.cartService.DeleteCart(c.Request.Context(), principal, cartID); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseIDParam reads the :id path parameter, responding with a validation
// error when it is not a positive integer.
func parseIDParam(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(c, services.NewValidationError("Invalid identifier", map[string]interface{}{"id": raw}))
		return 0, false
	}
	return id, true
}
