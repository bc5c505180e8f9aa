package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpadjusters/claims_backend/utils"
)

// RequireRole gates a route to the listed roles. Runs after
// TenantScopeMiddleware, so the role in context is the one from the database,
// not the (possibly stale) token claim.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetUserRoleFromContext(c.Request.Context())
		if !ok || role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
	}
}
