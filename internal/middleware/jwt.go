package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumina-signage/backend/internal/auth"
	"github.com/lumina-signage/backend/pkg/response"
)

const (
	// ContextUserEmail is the key for the admin email in gin context.
	ContextUserEmail = "user_email"
	// ContextUserRole is the key for the admin role in gin context.
	ContextUserRole = "user_role"
	// ContextUserSignageID is the key for an instance admin's scoped signage id.
	ContextUserSignageID = "user_signage_id"
)

// JWT returns a middleware that validates an admin JWT and sets its claims in
// context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserSignageID, claims.SignageID)
		c.Next()
	}
}
