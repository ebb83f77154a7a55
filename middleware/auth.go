package middleware

import (
	"net/http"
	"strings"

	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey  = "user_id"
	emailKey   = "email"
	isAdminKey = "is_admin"
)

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if len(authHeader) > 6 && strings.EqualFold(authHeader[:6], "Token ") {
		return strings.TrimSpace(authHeader[6:])
	}
	return c.Query("token")
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(emailKey, claims.Email)
	c.Set(isAdminKey, claims.IsAdmin)
}

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}

		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise. An invalid token is still rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := utils.ParseAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" for anonymous callers.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
