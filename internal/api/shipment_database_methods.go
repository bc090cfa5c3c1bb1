package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fbawholesale/ops-service/internal/models"
)

var (
	errPONotFound         = errors.New("purchase order not found")
	errPONotApproved      = errors.New("purchase order is not approved")
	errDuplicateReference = errors.New("shipment reference already taken")
)

// createShipment inserts a shipment for an approved purchase order. The
// order row is locked FOR UPDATE so a concurrent lifecycle transition
// serializes against the approved check. A unique violation on the
// reference is retried once with a fresh timestamp.
func (h *Handler) createShipment(ctx context.Context, orgID, userID, poID string, req *models.CreateShipmentRequest) (*models.InboundShipment, error) {
	shipment, err := h.createShipmentWithReference(ctx, orgID, userID, poID, req, newShipmentReference())
	if isUniqueViolation(err) {
		shipment, err = h.createShipmentWithReference(ctx, orgID, userID, poID, req, newShipmentReference())
		if isUniqueViolation(err) {
			return nil, errDuplicateReference
		}
	}
	return shipment, err
}

func (h *Handler) createShipmentWithReference(ctx context.Context, orgID, userID, poID string, req *models.CreateShipmentRequest, reference string) (*models.InboundShipment, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status models.POStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM purchase_orders WHERE id = $1 AND organization_id = $2 FOR UPDATE`,
		poID, orgID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errPONotFound
		}
		return nil, fmt.Errorf("failed to lock purchase order: %w", err)
	}
	if status != models.POStatusApproved {
		return nil, errPONotApproved
	}

	var shipment models.InboundShipment
	err = tx.QueryRow(ctx, `
		INSERT INTO inbound_shipments
			(purchase_order_id, organization_id, shipment_reference, cartons, weight_per_carton, length, width, height, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, purchase_order_id, organization_id, status, shipment_reference,
		          cartons, weight_per_carton, length, width, height, created_by, created_at, updated_at
	`, poID, orgID, reference, req.Cartons, req.WeightPerCarton, req.Length, req.Width, req.Height, userID).Scan(
		&shipment.ID, &shipment.PurchaseOrderID, &shipment.OrganizationID, &shipment.Status, &shipment.ShipmentReference,
		&shipment.Cartons, &shipment.WeightPerCarton, &shipment.Length, &shipment.Width, &shipment.Height,
		&shipment.CreatedBy, &shipment.CreatedAt, &shipment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shipment: %w", err)
	}

	if err := insertAuditLog(ctx, tx, orgID, userID, "shipment.created", "inbound_shipment", shipment.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &shipment, nil
}

// isUniqueViolation reports whether err wraps a Postgres unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// listShipments lists shipments newest first, optionally scoped to one
// purchase order.
func (h *Handler) listShipments(ctx context.Context, orgID, poID string) ([]models.InboundShipment, error) {
	query := `
		SELECT id, purchase_order_id, organization_id, status, shipment_reference,
		       cartons, weight_per_carton, length, width, height, created_by, created_at, updated_at
		FROM inbound_shipments
		WHERE organization_id = $1
		  AND ($2 = '' OR purchase_order_id = $2::uuid)
		ORDER BY created_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer rows.Close()

	shipments := make([]models.InboundShipment, 0)
	for rows.Next() {
		var s models.InboundShipment
		if err := rows.Scan(
			&s.ID, &s.PurchaseOrderID, &s.OrganizationID, &s.Status, &s.ShipmentReference,
			&s.Cartons, &s.WeightPerCarton, &s.Length, &s.Width, &s.Height,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

// updateShipmentStatus sets the status and bumps updated_at. Returns nil
// when the shipment does not exist in the organization.
func (h *Handler) updateShipmentStatus(ctx context.Context, orgID, shipmentID, userID string, status models.ShipmentStatus) (*models.InboundShipment, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var s models.InboundShipment
	err = tx.QueryRow(ctx, `
		UPDATE inbound_shipments
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2
		RETURNING id, purchase_order_id, organization_id, status, shipment_reference,
		          cartons, weight_per_carton, length, width, height, created_by, created_at, updated_at
	`, shipmentID, orgID, status).Scan(
		&s.ID, &s.PurchaseOrderID, &s.OrganizationID, &s.Status, &s.ShipmentReference,
		&s.Cartons, &s.WeightPerCarton, &s.Length, &s.Width, &s.Height,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	action := fmt.Sprintf("shipment.%s", s.Status)
	if err := insertAuditLog(ctx, tx, orgID, userID, action, "inbound_shipment", s.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &s, nil
}
