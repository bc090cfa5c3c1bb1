package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/fbawholesale/ops-service/internal/models"
)

var (
	errProductNotFound   = errors.New("product not found in organization")
	errSKUNotFound       = errors.New("sku not found in organization")
	errWarehouseNotFound = errors.New("warehouse not found in organization")
)

func (h *Handler) listProducts(ctx context.Context, orgID string) ([]models.Product, error) {
	query := `
		SELECT id, organization_id, title, brand, created_at
		FROM products
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Title, &p.Brand, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (h *Handler) createProduct(ctx context.Context, orgID string, req *models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (organization_id, title, brand)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, title, brand, created_at
	`

	var p models.Product
	err := h.db.Pool.QueryRow(ctx, query, orgID, req.Title, req.Brand).Scan(
		&p.ID, &p.OrganizationID, &p.Title, &p.Brand, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return &p, nil
}

func (h *Handler) listSKUs(ctx context.Context, orgID string) ([]models.SKU, error) {
	query := `
		SELECT s.id, s.product_id, s.sku, s.asin, s.fnsku, s.cost, s.created_at,
		       p.id, p.organization_id, p.title, p.brand, p.created_at
		FROM skus s
		JOIN products p ON p.id = s.product_id
		WHERE p.organization_id = $1
		ORDER BY s.created_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skus: %w", err)
	}
	defer rows.Close()

	skus := make([]models.SKU, 0)
	for rows.Next() {
		var s models.SKU
		var p models.Product
		if err := rows.Scan(
			&s.ID, &s.ProductID, &s.Code, &s.ASIN, &s.FNSKU, &s.Cost, &s.CreatedAt,
			&p.ID, &p.OrganizationID, &p.Title, &p.Brand, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sku: %w", err)
		}
		s.Product = &p
		skus = append(skus, s)
	}
	return skus, rows.Err()
}

func (h *Handler) createSKU(ctx context.Context, orgID string, req *models.CreateSKURequest) (*models.SKU, error) {
	var exists bool
	err := h.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND organization_id = $2)`,
		req.ProductID, orgID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, errProductNotFound
	}

	query := `
		INSERT INTO skus (product_id, sku, asin, fnsku, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, product_id, sku, asin, fnsku, cost, created_at
	`

	var s models.SKU
	err = h.db.Pool.QueryRow(ctx, query, req.ProductID, req.Code, req.ASIN, req.FNSKU, req.Cost).Scan(
		&s.ID, &s.ProductID, &s.Code, &s.ASIN, &s.FNSKU, &s.Cost, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sku: %w", err)
	}
	return &s, nil
}

func (h *Handler) listSuppliers(ctx context.Context, orgID string) ([]models.Supplier, error) {
	query := `
		SELECT id, organization_id, name, contact_email, payment_terms, created_at
		FROM suppliers
		WHERE organization_id = $1
		ORDER BY name
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]models.Supplier, 0)
	for rows.Next() {
		var s models.Supplier
		if err := rows.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.ContactEmail, &s.PaymentTerms, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (h *Handler) createSupplier(ctx context.Context, orgID string, req *models.CreateSupplierRequest) (*models.Supplier, error) {
	query := `
		INSERT INTO suppliers (organization_id, name, contact_email, payment_terms)
		VALUES ($1, $2, $3, $4)
		RETURNING id, organization_id, name, contact_email, payment_terms, created_at
	`

	var s models.Supplier
	err := h.db.Pool.QueryRow(ctx, query, orgID, req.Name, req.ContactEmail, req.PaymentTerms).Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.ContactEmail, &s.PaymentTerms, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert supplier: %w", err)
	}
	return &s, nil
}

func (h *Handler) listWarehouses(ctx context.Context, orgID string) ([]models.Warehouse, error) {
	query := `
		SELECT id, organization_id, name, location, created_at
		FROM warehouses
		WHERE organization_id = $1
		ORDER BY name
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	warehouses := make([]models.Warehouse, 0)
	for rows.Next() {
		var w models.Warehouse
		if err := rows.Scan(&w.ID, &w.OrganizationID, &w.Name, &w.Location, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

func (h *Handler) createWarehouse(ctx context.Context, orgID string, req *models.CreateWarehouseRequest) (*models.Warehouse, error) {
	query := `
		INSERT INTO warehouses (organization_id, name, location)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, name, location, created_at
	`

	var w models.Warehouse
	err := h.db.Pool.QueryRow(ctx, query, orgID, req.Name, req.Location).Scan(
		&w.ID, &w.OrganizationID, &w.Name, &w.Location, &w.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert warehouse: %w", err)
	}
	return &w, nil
}

func (h *Handler) listInventory(ctx context.Context, orgID string) ([]models.Inventory, error) {
	query := `
		SELECT i.id, i.sku_id, i.warehouse_id, i.quantity, i.updated_at,
		       s.id, s.product_id, s.sku, s.asin, s.fnsku, s.cost, s.created_at,
		       w.id, w.organization_id, w.name, w.location, w.created_at
		FROM inventory i
		JOIN skus s ON s.id = i.sku_id
		JOIN warehouses w ON w.id = i.warehouse_id
		WHERE w.organization_id = $1
		ORDER BY i.updated_at DESC
	`

	rows, err := h.db.Pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	inventory := make([]models.Inventory, 0)
	for rows.Next() {
		var inv models.Inventory
		var s models.SKU
		var w models.Warehouse
		if err := rows.Scan(
			&inv.ID, &inv.SKUID, &inv.WarehouseID, &inv.Quantity, &inv.UpdatedAt,
			&s.ID, &s.ProductID, &s.Code, &s.ASIN, &s.FNSKU, &s.Cost, &s.CreatedAt,
			&w.ID, &w.OrganizationID, &w.Name, &w.Location, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		inv.SKU = &s
		inv.Warehouse = &w
		inventory = append(inventory, inv)
	}
	return inventory, rows.Err()
}

// upsertInventory validates both references against the organization before
// writing; the (sku_id, warehouse_id) pair is unique so repeated calls
// overwrite the quantity.
func (h *Handler) upsertInventory(ctx context.Context, orgID string, req *models.UpsertInventoryRequest) (*models.Inventory, error) {
	var skuOK, whOK bool
	err := h.db.Pool.QueryRow(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM skus s JOIN products p ON p.id = s.product_id WHERE s.id = $1 AND p.organization_id = $3),
			EXISTS (SELECT 1 FROM warehouses WHERE id = $2 AND organization_id = $3)
	`, req.SKUID, req.WarehouseID, orgID).Scan(&skuOK, &whOK)
	if err != nil {
		return nil, fmt.Errorf("failed to check references: %w", err)
	}
	if !skuOK {
		return nil, errSKUNotFound
	}
	if !whOK {
		return nil, errWarehouseNotFound
	}

	query := `
		INSERT INTO inventory (sku_id, warehouse_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (sku_id, warehouse_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		RETURNING id, sku_id, warehouse_id, quantity, updated_at
	`

	var inv models.Inventory
	err = h.db.Pool.QueryRow(ctx, query, req.SKUID, req.WarehouseID, req.Quantity).Scan(
		&inv.ID, &inv.SKUID, &inv.WarehouseID, &inv.Quantity, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return &inv, nil
}
