package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

func CheckCORS(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if slices.Contains(allowed, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		c.Writer.Header().Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// OriginAllowed reports whether a websocket handshake from origin may be upgraded.
// Requests without an Origin header come from non-browser clients.
func OriginAllowed(allowed []string, origin string) bool {
	return origin == "" || slices.Contains(allowed, origin)
}
