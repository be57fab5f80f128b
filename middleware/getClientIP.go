package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP prefers X-Real-IP set by our ingress, then gin's own resolution
// (which honours X-Forwarded-For only from trusted proxies).
func getClientIP(c *gin.Context) string {
	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		return xri
	}
	return c.ClientIP()
}
