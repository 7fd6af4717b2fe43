package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
)

// RequireRoles allows the request through when the caller holds at least one
// of the listed roles. Roles come from the user loaded by AuthMiddleware, not
// from anything the client asserts.
func RequireRoles(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		for _, role := range allowed {
			if user.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// RequireAdmin is the common admin-only gate. Handlers behind it still
// re-validate the admin role inside the service before any write.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(auth.RoleAdmin)
}
