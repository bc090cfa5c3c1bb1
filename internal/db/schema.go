package db

import (
	"context"
	"fmt"
	"log"
)

// InitSchema creates the required tables and indexes if they are missing.
// Safe to run on every startup.
func (db *Database) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS organizations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS memberships (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (organization_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS skus (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			sku TEXT NOT NULL,
			asin TEXT NOT NULL DEFAULT '',
			fnsku TEXT NOT NULL DEFAULT '',
			cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			contact_email TEXT NOT NULL DEFAULT '',
			payment_terms TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS warehouses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			sku_id UUID NOT NULL REFERENCES skus(id) ON DELETE CASCADE,
			warehouse_id UUID NOT NULL REFERENCES warehouses(id) ON DELETE CASCADE,
			quantity INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (sku_id, warehouse_id)
		);`,
		`CREATE TABLE IF NOT EXISTS purchase_orders (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			supplier_id UUID NOT NULL REFERENCES suppliers(id),
			status TEXT NOT NULL DEFAULT 'draft',
			total_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_by UUID NOT NULL REFERENCES users(id),
			approved_by UUID NULL REFERENCES users(id),
			approved_at TIMESTAMPTZ NULL,
			approval_notes TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS purchase_order_items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			purchase_order_id UUID NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
			sku_id UUID NOT NULL REFERENCES skus(id),
			quantity INTEGER NOT NULL,
			unit_cost NUMERIC(12,2) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS inbound_shipments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			purchase_order_id UUID NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'created',
			shipment_reference TEXT NOT NULL,
			cartons INTEGER NOT NULL,
			weight_per_carton NUMERIC(12,2) NOT NULL DEFAULT 0,
			length NUMERIC(12,2) NOT NULL DEFAULT 0,
			width NUMERIC(12,2) NOT NULL DEFAULT 0,
			height NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			organization_id UUID NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id),
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		// Reference collisions surface as unique violations and are retried once
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_inbound_shipments_reference ON inbound_shipments(shipment_reference);`,
		`CREATE INDEX IF NOT EXISTS idx_memberships_user ON memberships(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_orders_org_created ON purchase_orders(organization_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_orders_created_by ON purchase_orders(created_by);`,
		`CREATE INDEX IF NOT EXISTS idx_po_items_po ON purchase_order_items(purchase_order_id);`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_org_created ON inbound_shipments(organization_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_po ON inbound_shipments(purchase_order_id);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_org ON audit_logs(organization_id, created_at DESC);`,
	}

	for _, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}

	log.Println("Ops service database schema verified successfully")
	return nil
}
