package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	adminCookieValue = "1"
)

// RequireAdmin ensures the incoming request carries a valid admin cookie.
// Unauthenticated requests get a JSON 401.
func RequireAdmin(cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, err := c.Cookie(cookieName); err == nil && v == adminCookieValue {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
}
