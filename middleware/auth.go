package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/models"
	"github.com/nkozdemir/fakestore-backend/services"
)

// PrincipalContextKey is the gin context key holding the authenticated
// principal.
const PrincipalContextKey = "principal"

// RequireAuth validates the bearer token and stores the resulting principal
// in the request context. Requests without a valid token are rejected with
// 401 before reaching a handler.
func RequireAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		principal, err := tokens.Validate(tokenStr)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// OptionalAuth populates the principal when a valid bearer token is
// present, and lets the request through anonymously otherwise. Used on
// public endpoints whose response is personalized for signed-in users.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header != "" && tokenStr != header {
			if principal, err := tokens.Validate(tokenStr); err == nil {
				c.Set(PrincipalContextKey, principal)
			}
		}
		c.Next()
	}
}

// RequireOperator restricts a route group to staff/admin principals. It
// must run after RequireAuth.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortUnauthorized(c, "Authentication required")
			return
		}
		if !principal.Role.IsOperator() {
			c.JSON(http.StatusForbidden, gin.H{"error": gin.H{
				"code":    services.CodeForbidden,
				"message": "Staff role required",
			}})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated principal from the gin context.
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	val, exists := c.Get(PrincipalContextKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := val.(models.Principal)
	return principal, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
		"code":    services.CodeUnauthorized,
		"message": message,
	}})
	c.Abort()
}
