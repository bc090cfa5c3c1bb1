package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fbawholesale/ops-service/internal/models"
)

// listUsersWithRoles lists every user, left-joined against the organization's
// memberships. A NULL role marks a user with no membership yet.
func (h *Handler) listUsersWithRoles(ctx context.Context, orgID string) ([]models.UserWithRole, error) {
	query := `
		SELECT u.id, u.full_name, u.email, to_char(u.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"'), m.role
		FROM users u
		LEFT JOIN memberships m ON m.user_id = u.id AND m.organization_id = $1
		ORDER BY u.created_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]models.UserWithRole, 0)
	for rows.Next() {
		var u models.UserWithRole
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.JoinedAt, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// roleAssignResult reports a role upsert: the fresh membership, the target
// user's profile, and whether this was the user's first membership in the
// organization (a pending user being approved).
type roleAssignResult struct {
	membership      *models.Membership
	user            *models.User
	firstAssignment bool
}

// upsertMembershipRole creates or updates the target user's membership and
// writes the audit row in the same transaction. Returns nil when the target
// user does not exist.
func (h *Handler) upsertMembershipRole(ctx context.Context, orgID, targetID, adminID string, role models.Role) (*roleAssignResult, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var user models.User
	err = tx.QueryRow(ctx,
		`SELECT id, email, full_name, created_at FROM users WHERE id = $1`,
		targetID,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var existed bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM memberships WHERE organization_id = $1 AND user_id = $2)`,
		orgID, targetID,
	).Scan(&existed)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	var m models.Membership
	err = tx.QueryRow(ctx, `
		INSERT INTO memberships (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING id, organization_id, user_id, role, created_at
	`, orgID, targetID, role).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert membership: %w", err)
	}

	if err := insertAuditLog(ctx, tx, orgID, adminID, "membership.role_set", "membership", m.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &roleAssignResult{
		membership:      &m,
		user:            &user,
		firstAssignment: !existed,
	}, nil
}
