package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fbawholesale/ops-service/internal/models"
)

// OrgContext resolves the caller's active organization and role and stores
// them in the request context. Runs after AuthMiddleware on every tenant
// scoped route. A caller with no memberships at all is rejected with 403
// "Pending approval"; this is the only place that distinction is made.
func (h *Handler) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "Authentication required",
				Message: "Unable to identify user from token",
			})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		memberships, err := h.getUserMemberships(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "Failed to load memberships",
				Message: err.Error(),
			})
			c.Abort()
			return
		}

		if len(memberships) == 0 {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Pending approval",
				Message: "Your account is awaiting approval by an administrator",
			})
			c.Abort()
			return
		}

		active := h.resolveActiveMembership(ctx, GetSessionID(c), memberships)
		c.Set("org_id", active.OrganizationID)
		c.Set("role", active.Role)

		c.Next()
	}
}

// RequireAction gates a route on the active role's permission for one action.
// Must run after OrgContext.
func RequireAction(action models.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if !models.CanPerform(role, action) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Forbidden",
				Message: "Your role does not permit this action",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetOrgID returns the active organization id set by OrgContext.
func GetOrgID(c *gin.Context) string {
	orgID, _ := c.Get("org_id")
	s, _ := orgID.(string)
	return s
}

// GetRole returns the active role set by OrgContext, or nil before it ran.
func GetRole(c *gin.Context) *models.Role {
	v, exists := c.Get("role")
	if !exists {
		return nil
	}
	role, ok := v.(models.Role)
	if !ok {
		return nil
	}
	return &role
}
