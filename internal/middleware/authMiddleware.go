package middleware

import (
	"net/http"
	"strings"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/service"
	"github.com/gin-gonic/gin"
)

// Validates the admin JWT and requires the admin role
func RequireAdmin(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if role, _ := claims["role"].(string); role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin role required",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("email", claims["email"])
		c.Set("role", claims["role"])

		c.Next()
	}
}
