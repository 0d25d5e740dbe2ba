package middleware

import (
	"net/http"
	"strings"

	"github.com/bajrangpainters/backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// TokenAuthenticator validates bearer tokens.
type TokenAuthenticator interface {
	Authenticate(token string) (*jwt.Claims, error)
}

// Auth requires a valid admin bearer token and stores the username as "admin".
func Auth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("admin", claims.Username)
		c.Next()
	}
}
