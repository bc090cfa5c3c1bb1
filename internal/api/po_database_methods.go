package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fbawholesale/ops-service/internal/models"
)

// errSupplierNotFound marks a create attempt against a supplier outside the
// caller's organization.
var errSupplierNotFound = errors.New("supplier not found in organization")

// createPurchaseOrder inserts the order, its items and the audit row in one
// transaction. The supplier is validated inside the transaction so a created
// order always references a supplier of the same organization.
func (h *Handler) createPurchaseOrder(ctx context.Context, orgID, userID, supplierID string, status models.POStatus, items []models.POItemInput) (*models.PurchaseOrder, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var supplierExists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1 AND organization_id = $2)`,
		supplierID, orgID,
	).Scan(&supplierExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check supplier: %w", err)
	}
	if !supplierExists {
		return nil, errSupplierNotFound
	}

	total := models.ItemsTotal(items)

	var po models.PurchaseOrder
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (organization_id, supplier_id, status, total_cost, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, organization_id, supplier_id, status, total_cost, created_by,
		          approved_by, approved_at, approval_notes, created_at
	`, orgID, supplierID, status, total, userID).Scan(
		&po.ID, &po.OrganizationID, &po.SupplierID, &po.Status, &po.TotalCost, &po.CreatedBy,
		&po.ApprovedBy, &po.ApprovedAt, &po.ApprovalNotes, &po.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase order: %w", err)
	}

	po.Items = make([]models.PurchaseOrderItem, 0, len(items))
	for _, item := range items {
		var row models.PurchaseOrderItem
		err = tx.QueryRow(ctx, `
			INSERT INTO purchase_order_items (purchase_order_id, sku_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4)
			RETURNING id, purchase_order_id, sku_id, quantity, unit_cost
		`, po.ID, item.SKUID, item.Quantity, item.UnitCost).Scan(
			&row.ID, &row.PurchaseOrderID, &row.SKUID, &row.Quantity, &row.UnitCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert purchase order item: %w", err)
		}
		po.Items = append(po.Items, row)
	}

	if err := insertAuditLog(ctx, tx, orgID, userID, "purchase_order.created", "purchase_order", po.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &po, nil
}

// listPurchaseOrders lists the organization's orders newest first, with the
// supplier joined and the item count aggregated. An empty createdBy lists
// everything; otherwise only that user's orders are returned.
func (h *Handler) listPurchaseOrders(ctx context.Context, orgID, createdBy string) ([]models.PurchaseOrder, error) {
	query := `
		SELECT po.id, po.organization_id, po.supplier_id, po.status, po.total_cost,
		       po.created_by, po.approved_by, po.approved_at, po.approval_notes, po.created_at,
		       s.id, s.organization_id, s.name, s.contact_email, s.payment_terms, s.created_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.organization_id = $1
		  AND ($2 = '' OR po.created_by = $2::uuid)
		ORDER BY po.created_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.PurchaseOrder, 0)
	for rows.Next() {
		var po models.PurchaseOrder
		var supplier models.Supplier
		if err := rows.Scan(
			&po.ID, &po.OrganizationID, &po.SupplierID, &po.Status, &po.TotalCost,
			&po.CreatedBy, &po.ApprovedBy, &po.ApprovedAt, &po.ApprovalNotes, &po.CreatedAt,
			&supplier.ID, &supplier.OrganizationID, &supplier.Name, &supplier.ContactEmail, &supplier.PaymentTerms, &supplier.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		po.Supplier = &supplier
		orders = append(orders, po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := h.attachOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachOrderItems loads the items for a batch of orders in one query and
// groups them onto their parents.
func (h *Handler) attachOrderItems(ctx context.Context, orders []models.PurchaseOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[string]*models.PurchaseOrder, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		byID[orders[i].ID] = &orders[i]
		orders[i].Items = make([]models.PurchaseOrderItem, 0)
	}

	query := `
		SELECT i.id, i.purchase_order_id, i.sku_id, i.quantity, i.unit_cost,
		       sk.id, sk.product_id, sk.sku, sk.asin, sk.fnsku, sk.cost, sk.created_at,
		       p.id, p.organization_id, p.title, p.brand, p.created_at
		FROM purchase_order_items i
		JOIN skus sk ON sk.id = i.sku_id
		JOIN products p ON p.id = sk.product_id
		WHERE i.purchase_order_id = ANY($1)
		ORDER BY i.id
	`
	rows, err := h.db.Pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query purchase order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.PurchaseOrderItem
		var sku models.SKU
		var product models.Product
		if err := rows.Scan(
			&item.ID, &item.PurchaseOrderID, &item.SKUID, &item.Quantity, &item.UnitCost,
			&sku.ID, &sku.ProductID, &sku.Code, &sku.ASIN, &sku.FNSKU, &sku.Cost, &sku.CreatedAt,
			&product.ID, &product.OrganizationID, &product.Title, &product.Brand, &product.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		sku.Product = &product
		item.SKU = &sku
		if po, ok := byID[item.PurchaseOrderID]; ok {
			po.Items = append(po.Items, item)
		}
	}
	return rows.Err()
}

// getPurchaseOrder fetches one order with its supplier and items, or nil
// when the order does not exist in the organization.
func (h *Handler) getPurchaseOrder(ctx context.Context, orgID, poID string) (*models.PurchaseOrder, error) {
	query := `
		SELECT po.id, po.organization_id, po.supplier_id, po.status, po.total_cost,
		       po.created_by, po.approved_by, po.approved_at, po.approval_notes, po.created_at,
		       s.id, s.organization_id, s.name, s.contact_email, s.payment_terms, s.created_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1 AND po.organization_id = $2
	`

	var po models.PurchaseOrder
	var supplier models.Supplier
	err := h.db.Pool.QueryRow(ctx, query, poID, orgID).Scan(
		&po.ID, &po.OrganizationID, &po.SupplierID, &po.Status, &po.TotalCost,
		&po.CreatedBy, &po.ApprovedBy, &po.ApprovedAt, &po.ApprovalNotes, &po.CreatedAt,
		&supplier.ID, &supplier.OrganizationID, &supplier.Name, &supplier.ContactEmail, &supplier.PaymentTerms, &supplier.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	po.Supplier = &supplier

	single := []models.PurchaseOrder{po}
	if err := h.attachOrderItems(ctx, single); err != nil {
		return nil, err
	}
	return &single[0], nil
}

// poUpdate is one conditional status update.
type poUpdate struct {
	orgID         string
	poID          string
	from          models.POStatus
	to            models.POStatus
	userID        string
	creatorFilter string // when set, only rows created by this user match
	decision      bool
	notes         string
}

// updatePurchaseOrderStatus applies a guarded transition. The WHERE clause
// carries the expected current status, so a row already moved by a
// concurrent request matches nothing and nil is returned.
func (h *Handler) updatePurchaseOrderStatus(ctx context.Context, u poUpdate) (*models.PurchaseOrder, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var query string
	args := []interface{}{u.poID, u.orgID, u.from, u.to}
	if u.decision {
		query = `
			UPDATE purchase_orders
			SET status = $4, approved_by = $5, approved_at = NOW(), approval_notes = NULLIF($6, '')
			WHERE id = $1 AND organization_id = $2 AND status = $3
			RETURNING id, organization_id, supplier_id, status, total_cost, created_by,
			          approved_by, approved_at, approval_notes, created_at
		`
		args = append(args, u.userID, u.notes)
	} else {
		query = `
			UPDATE purchase_orders
			SET status = $4
			WHERE id = $1 AND organization_id = $2 AND status = $3
			  AND ($5 = '' OR created_by = $5::uuid)
			RETURNING id, organization_id, supplier_id, status, total_cost, created_by,
			          approved_by, approved_at, approval_notes, created_at
		`
		args = append(args, u.creatorFilter)
	}

	var po models.PurchaseOrder
	err = tx.QueryRow(ctx, query, args...).Scan(
		&po.ID, &po.OrganizationID, &po.SupplierID, &po.Status, &po.TotalCost, &po.CreatedBy,
		&po.ApprovedBy, &po.ApprovedAt, &po.ApprovalNotes, &po.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update purchase order status: %w", err)
	}

	action := fmt.Sprintf("purchase_order.%s", po.Status)
	if err := insertAuditLog(ctx, tx, u.orgID, u.userID, action, "purchase_order", po.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &po, nil
}

// getPurchaseOrderStatus returns the current status, or "" when no such
// order exists in the organization. Always hits the database: this feeds the
// 404 versus 409 distinction and must not read a stale cache.
func (h *Handler) getPurchaseOrderStatus(ctx context.Context, orgID, poID string) (models.POStatus, error) {
	var status models.POStatus
	err := h.db.Pool.QueryRow(ctx,
		`SELECT status FROM purchase_orders WHERE id = $1 AND organization_id = $2`,
		poID, orgID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get purchase order status: %w", err)
	}
	return status, nil
}

// deletePurchaseOrder removes an order; items and shipments follow by
// cascade. Returns false when nothing matched.
func (h *Handler) deletePurchaseOrder(ctx context.Context, orgID, poID, userID string) (bool, error) {
	tx, err := h.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM purchase_orders WHERE id = $1 AND organization_id = $2`,
		poID, orgID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := insertAuditLog(ctx, tx, orgID, userID, "purchase_order.deleted", "purchase_order", poID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}
