package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chayo-ai/backend/utils"
)

const UserIDKey = "user_id"

func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "unauthorized"})
			return
		}
		t := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := utils.ParseJWT(secret, t)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "unauthorized"})
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}
