package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey holds the authenticated user id (string).
	UserIDKey = "userID"
	// TokenKey holds the raw bearer token, forwarded to the backend.
	TokenKey = "token"
)

// JWTAuthMiddleware verifies the bearer token. Browsers cannot set headers on
// websocket upgrades, so a "token" query parameter is accepted as well.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		header := c.GetHeader("Authorization")
		switch {
		case header != "":
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}
			tokenStr = parts[1]
		case c.Query("token") != "":
			tokenStr = c.Query("token")
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		userID, err := auth.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(TokenKey, tokenStr)
		c.Next()
	}
}
