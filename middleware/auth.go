package middleware

import (
	"net/http"
	"strings"

	"wanderly/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware reads a bearer token and stores its subject under utils.ContextUserIDKey.
// With required=false a missing header passes through anonymously, but a bad token is still rejected.
func JWTAuthMiddleware(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if required {
				utils.JSONError(c, http.StatusUnauthorized, "Missing Authorization header", "")
				return
			}
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid Authorization header", "expected a Bearer token")
			return
		}

		subject, err := utils.ExtractIDFromToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		}
		c.Set(utils.ContextUserIDKey, subject)
		c.Next()
	}
}
