package api

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fbawholesale/ops-service/internal/models"
)

// upsertUserFromClaims materializes the token's identity as a local user row.
// Insert on first sight, refresh profile fields after.
func (h *Handler) upsertUserFromClaims(ctx context.Context, userID, email, fullName string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = CASE WHEN EXCLUDED.full_name <> '' THEN EXCLUDED.full_name ELSE users.full_name END
		RETURNING id, email, full_name, created_at
	`

	var user models.User
	err := h.db.Pool.QueryRow(ctx, query, userID, email, fullName).Scan(
		&user.ID, &user.Email, &user.FullName, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// getUserMemberships loads all memberships for a user with their organization
// attached, ordered by organization creation time so the first row is the
// deterministic default.
func (h *Handler) getUserMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	query := `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at,
		       o.id, o.name, o.created_at
		FROM memberships m
		JOIN organizations o ON o.id = m.organization_id
		WHERE m.user_id = $1
		ORDER BY o.created_at, o.id
	`

	rows, err := h.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var org models.Organization
		if err := rows.Scan(
			&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt,
			&org.ID, &org.Name, &org.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Organization = &org
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// getOrganizationByID fetches one organization.
func (h *Handler) getOrganizationByID(ctx context.Context, orgID string) (*models.Organization, error) {
	query := `SELECT id, name, created_at FROM organizations WHERE id = $1`

	var org models.Organization
	err := h.db.Pool.QueryRow(ctx, query, orgID).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// updateOrganizationName renames an organization and returns the fresh row.
func (h *Handler) updateOrganizationName(ctx context.Context, orgID, name string) (*models.Organization, error) {
	query := `UPDATE organizations SET name = $2 WHERE id = $1 RETURNING id, name, created_at`

	var org models.Organization
	err := h.db.Pool.QueryRow(ctx, query, orgID, name).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return &org, nil
}

// getDashboardSummary collects the landing page counters in a single round trip.
func (h *Handler) getDashboardSummary(ctx context.Context, orgID string) (*models.DashboardSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE organization_id = $1),
			(SELECT COUNT(*) FROM skus s JOIN products p ON p.id = s.product_id WHERE p.organization_id = $1),
			(SELECT COUNT(*) FROM suppliers WHERE organization_id = $1),
			(SELECT COUNT(*) FROM purchase_orders WHERE organization_id = $1 AND status = 'submitted'),
			(SELECT COUNT(*) FROM inbound_shipments WHERE organization_id = $1 AND status <> 'delivered'),
			(SELECT COALESCE(SUM(total_cost), 0) FROM purchase_orders WHERE organization_id = $1 AND status NOT IN ('draft', 'cancelled'))
	`

	var summary models.DashboardSummary
	err := h.db.Pool.QueryRow(ctx, query, orgID).Scan(
		&summary.Products, &summary.SKUs, &summary.Suppliers,
		&summary.PendingPOs, &summary.OpenShipments, &summary.TotalPOSpend,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard summary: %w", err)
	}
	return &summary, nil
}

// insertAuditLog records an action inside the caller's transaction so the
// audit row commits or rolls back with the change it describes.
func insertAuditLog(ctx context.Context, tx pgx.Tx, orgID, userID, action, entityType, entityID string) error {
	query := `
		INSERT INTO audit_logs (organization_id, user_id, action, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, query, orgID, userID, action, entityType, entityID); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
