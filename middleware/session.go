package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/state"
)

// RequireSession rejects requests to protected endpoints when no session
// is active, before any remote call can be attempted.
func RequireSession(m *state.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_AUTHENTICATED",
					"message": "Please login first",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
