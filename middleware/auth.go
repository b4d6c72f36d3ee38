package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware authenticates clients using a static Bearer token.
// Comparison is constant-time over SHA-256 digests.
func AuthMiddleware(token string) gin.HandlerFunc {
	expected := sha256.Sum256([]byte(token))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}

		got := sha256.Sum256([]byte(strings.TrimPrefix(authHeader, "Bearer ")))
		if subtle.ConstantTimeCompare(expected[:], got[:]) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
