package middleware

import (
	"accountability/utils"

	"github.com/gin-gonic/gin"
)

// AdminChecker is satisfied by service.AdminPolicy.
type AdminChecker interface {
	IsAdmin(userID uint) bool
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(admins AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			utils.Unauthorized(c, "unauthorized")
			c.Abort()
			return
		}
		if !admins.IsAdmin(userID) {
			utils.Forbidden(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}
