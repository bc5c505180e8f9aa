package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fpadjusters/claims_backend/models"
	"github.com/fpadjusters/claims_backend/utils"
)

// TenantScopeMiddleware rejects anonymous requests and re-verifies the token
// claims against the live user row: the user must still exist inside the
// claimed tenant and still be active. Deleting or disabling a user therefore
// revokes all of their outstanding tokens on the next request. The verified
// user's email and admin bit are attached to the context for downstream
// handlers.
func TenantScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userId, okUser := utils.GetUserIdFromContext(ctx)
		tenantId, okTenant := utils.GetTenantIdFromContext(ctx)
		if !okUser || !okTenant || userId == 0 || tenantId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		sessionUser, err := models.FindSessionUser(ctx, userId, tenantId)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx = utils.SetUserEmailInContext(ctx, sessionUser.Email)
		ctx = utils.SetUserRoleInContext(ctx, string(sessionUser.Role))
		ctx = utils.SetIsAdminInContext(ctx, sessionUser.Role == models.UserRoleAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
