package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/middleware"
	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// AuthController handles registration and login.
type AuthController struct {
	authService *services.AuthService
	userService services.UserService
}

// NewAuthController creates a new AuthController.
func NewAuthController(authService *services.AuthService, userService services.UserService) *AuthController {
	return &AuthController{authService: authService, userService: userService}
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, svcErr := ac.authService.Register(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, user, svcErr := ac.authService.Login(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":        pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Refresh handles POST /auth/refresh, rotating a refresh token into a new
// access/refresh pair.
func (ac *AuthController) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, svcErr := ac.authService.Refresh(c.Request.Context(), req.Refresh)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ValidateUsername handles GET /auth/validate-username.
func (ac *AuthController) ValidateUsername(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		respondError(c, services.NewValidationError("username parameter is required", nil))
		return
	}

	available, svcErr := ac.authService.UsernameAvailable(c.Request.Context(), username)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "available": available})
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return
	}

	user, svcErr := ac.userService.GetUser(c.Request.Context(), principal, principal.UserID)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, user)
}
