package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lumina-signage/backend/internal/auth"
	"github.com/lumina-signage/backend/pkg/response"
)

// RequireSuperAdmin allows only superadmin tokens.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != auth.RoleSuperAdmin {
			response.Forbidden(c, "superadmin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireInstanceAccess allows superadmins, and instance admins whose token
// is scoped to the signage id in the named route parameter.
func RequireInstanceAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == auth.RoleSuperAdmin {
			c.Next()
			return
		}
		if role == auth.RoleAdmin && c.GetString(ContextUserSignageID) == c.Param(param) {
			c.Next()
			return
		}
		response.Forbidden(c, "insufficient permissions")
		c.Abort()
	}
}
