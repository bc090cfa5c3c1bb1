package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/fbawholesale/ops-service/internal/db"
	"github.com/fbawholesale/ops-service/internal/events"
	"github.com/fbawholesale/ops-service/internal/models"
	"github.com/fbawholesale/ops-service/internal/redisx"
	"github.com/fbawholesale/ops-service/internal/services"
)

// Handler holds the dependencies for API handlers. Redis, Kafka and SES are
// optional: a nil client degrades the feature it backs without failing the
// request path.
type Handler struct {
	db     *db.Database
	rdb    *redis.Client
	events *events.Producer
	email  *services.EmailService
}

// NewHandler creates a new API handler
func NewHandler(database *db.Database, rdb *redis.Client, producer *events.Producer, email *services.EmailService) *Handler {
	return &Handler{
		db:     database,
		rdb:    rdb,
		events: producer,
		email:  email,
	}
}

// Health returns the health status of the service
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database unhealthy",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "ops-service",
	})
}

// Me resolves the caller's identity: it upserts the user row from the token
// claims, loads memberships, and reports the active organization and role.
// A user with zero memberships is returned with pending=true, not an error.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Authentication required",
			Message: "Unable to identify user from token",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.upsertUserFromClaims(ctx, userID, GetEmail(c), GetFullName(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to resolve user",
			Message: err.Error(),
		})
		return
	}

	memberships, err := h.getUserMemberships(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load memberships",
			Message: err.Error(),
		})
		return
	}

	resp := models.MeResponse{
		User:        *user,
		Memberships: memberships,
		Pending:     len(memberships) == 0,
	}

	if len(memberships) > 0 {
		active := h.resolveActiveMembership(ctx, GetSessionID(c), memberships)
		resp.ActiveOrg = active.Organization
		role := active.Role
		resp.Role = &role
	}

	c.JSON(http.StatusOK, resp)
}

// SelectOrganization persists the session's active organization. The choice
// is validated against the caller's memberships.
func (h *Handler) SelectOrganization(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Authentication required",
			Message: "Unable to identify user from token",
		})
		return
	}

	var req models.SelectOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
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
		return
	}

	var selected *models.Membership
	for i := range memberships {
		if memberships[i].OrganizationID == req.OrganizationID {
			selected = &memberships[i]
			break
		}
	}
	if selected == nil {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Forbidden",
			Message: "You are not a member of this organization",
		})
		return
	}

	h.storeActiveOrg(ctx, GetSessionID(c), req.OrganizationID)

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Active organization updated",
		Data:    selected.Organization,
	})
}

// resolveActiveMembership picks the session's active membership: the stored
// selection when it still maps to a membership, otherwise the first (oldest
// organization) membership.
func (h *Handler) resolveActiveMembership(ctx context.Context, sessionID string, memberships []models.Membership) *models.Membership {
	if stored := h.loadActiveOrg(ctx, sessionID); stored != "" {
		for i := range memberships {
			if memberships[i].OrganizationID == stored {
				return &memberships[i]
			}
		}
	}
	return &memberships[0]
}

func (h *Handler) storeActiveOrg(ctx context.Context, sessionID, orgID string) {
	if h.rdb == nil || sessionID == "" {
		return
	}
	key := fmt.Sprintf(redisx.KeyActiveOrg, sessionID)
	_ = h.rdb.Set(ctx, key, orgID, redisx.TTLActiveOrg).Err()
}

func (h *Handler) loadActiveOrg(ctx context.Context, sessionID string) string {
	if h.rdb == nil || sessionID == "" {
		return ""
	}
	key := fmt.Sprintf(redisx.KeyActiveOrg, sessionID)
	val, err := h.rdb.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// Dashboard returns the landing page counters for the active organization.
func (h *Handler) Dashboard(c *gin.Context) {
	orgID := GetOrgID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.getDashboardSummary(ctx, orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load dashboard",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSettings returns the active organization record.
func (h *Handler) GetSettings(c *gin.Context) {
	orgID := GetOrgID(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.getOrganizationByID(ctx, orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to load organization",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, org)
}

// UpdateSettings renames the active organization.
func (h *Handler) UpdateSettings(c *gin.Context) {
	orgID := GetOrgID(c)

	var req models.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	org, err := h.updateOrganizationName(ctx, orgID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to update organization",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Message: "Organization updated",
		Data:    org,
	})
}
