package middlewares

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/jobtrail/internal/domain/user"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if !slices.Contains(roles, role) {
			abortJSON(c, http.StatusForbidden, "forbidden", "User role "+string(role)+" is not authorized to access this route")
			return
		}
		c.Next()
	}
}
