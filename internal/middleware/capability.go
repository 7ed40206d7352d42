package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
)

// RequireCapability must run after AuthMiddleware.
func RequireCapability(capability permissions.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !permissions.Can(Role(c), capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Sem permissão para esta operação.",
			})
			return
		}
		c.Next()
	}
}
