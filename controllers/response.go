package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkozdemir/fakestore-backend/services"
)

// respondError renders a ServiceError as the API error envelope:
// {"error": {"code": ..., "message": ..., "details": ...}}.
func respondError(c *gin.Context, svcErr *services.ServiceError) {
	body := gin.H{
		"code":    svcErr.Code,
		"message": svcErr.Message,
	}
	if svcErr.Details != nil {
		body["details"] = svcErr.Details
	}
	c.JSON(svcErr.StatusCode, gin.H{"error": body})
}

// respondBindError renders a request-body binding failure as a
// VALIDATION_ERROR envelope.
func respondBindError(c *gin.Context, err error) {
	respondError(c, services.NewValidationError("Invalid request payload", map[string]interface{}{
		"reason": err.Error(),
	}))
}

func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{
		"code":    services.CodeUnauthorized,
		"message": message,
	}})
}
