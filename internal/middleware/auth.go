package middleware

import (
	"net/http"
	"strings"

	"arcadesync/internal/infrastructure/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware закрывает админские ручки JWT-токеном.
func AuthMiddleware(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		subject, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("subject", subject)
		c.Next()
	}
}
