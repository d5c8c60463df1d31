package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// UserController handles HTTP requests for user accounts.
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new UserController.
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetUsers handles GET /users (staff/admin only).
func (uc *UserController) GetUsers(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}

	users, svcErr := uc.userService.ListUsers(c.Request.Context(), principal)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser handles GET /users/:id.
func (uc *UserController) GetUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, svcErr := uc.userService.GetUser(c.Request.Context(), principal, id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:id.
func (uc *UserController) UpdateUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, svcErr := uc.userService.UpdateUser(c.Request.Context(), principal, id, &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /users/:id.
func (uc *UserController) DeleteUser(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if svcErr := uc.userService.DeleteUser(c.Request.Context(), principal, id); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.Status(http.StatusNoContent)
}
