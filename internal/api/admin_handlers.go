package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fbawholesale/ops-service/internal/logging"
	"github.com/fbawholesale/ops-service/internal/models"
)

// ListUsers returns every known user with their role in the active
// organization. Users with no membership appear with a nil role; they are
// the pending approvals an admin acts on.
func (h *Handler) ListUsers(c *gin.Context) {
	orgID := GetOrgID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	users, err := h.listUsersWithRoles(ctx, orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to list users",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// SetUserRole assigns or changes a user's role in the active organization.
// The membership is upserted, so the same endpoint approves a pending user
// and changes an existing role. A first assignment triggers a notification
// email; email failure never fails the assignment.
func (h *Handler) SetUserRole(c *gin.Context) {
	adminID, _ := GetUserID(c)
	orgID := GetOrgID(c)

	targetID := c.Param("user_id")
	if _, err := uuid.Parse(targetID); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid user ID",
			Message: "User ID must be a valid UUID",
		})
		return
	}

	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}
	if !req.Role.IsValid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid role",
			Message: fmt.Sprintf("Unknown role %q", req.Role),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := h.upsertMembershipRole(ctx, orgID, targetID, adminID, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to set role",
			Message: err.Error(),
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "User not found",
			Message: fmt.Sprintf("No user found with ID %s", targetID),
		})
		return
	}

	if result.firstAssignment && h.email != nil {
		go func(email, name string, role models.Role) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.email.SendAccessApproved(ctx, email, name, role); err != nil {
				logging.LogKV("warn", "approval email failed", map[string]interface{}{
					"user_id": targetID,
					"err":     err.Error(),
				})
			}
		}(result.user.Email, result.user.FullName, req.Role)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Role updated",
		Data:    result.membership,
	})
}
