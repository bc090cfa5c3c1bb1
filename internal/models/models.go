package models

import (
	"time"
)

// User mirrors the identity provider's user record. Rows are created the
// first time a token for the user is seen; only profile fields change after.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Organization is the tenant boundary. Every business entity except User
// carries an organization reference.
type Organization struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Membership associates a user with an organization under exactly one role.
type Membership struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Role           Role      `json:"role" db:"role"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Organization *Organization `json:"organization,omitempty"`
}

type Product struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	Brand          string    `json:"brand" db:"brand"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// SKU is a sellable variant of a Product. Cost is used to default purchase
// order line pricing.
type SKU struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Code      string    `json:"sku" db:"sku"`
	ASIN      string    `json:"asin,omitempty" db:"asin"`
	FNSKU     string    `json:"fnsku,omitempty" db:"fnsku"`
	Cost      float64   `json:"cost" db:"cost"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty"`
}

type Supplier struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	ContactEmail   string    `json:"contact_email,omitempty" db:"contact_email"`
	PaymentTerms   string    `json:"payment_terms,omitempty" db:"payment_terms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Warehouse struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Location       string    `json:"location" db:"location"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Inventory struct {
	ID          string    `json:"id" db:"id"`
	SKUID       string    `json:"sku_id" db:"sku_id"`
	WarehouseID string    `json:"warehouse_id" db:"warehouse_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	SKU       *SKU       `json:"sku,omitempty"`
	Warehouse *Warehouse `json:"warehouse,omitempty"`
}

// PurchaseOrder is an order placed with a supplier. total_cost is computed
// once at creation from its items; there is no item-update path afterwards.
type PurchaseOrder struct {
	ID             string     `json:"id" db:"id"`
	OrganizationID string     `json:"organization_id" db:"organization_id"`
	SupplierID     string     `json:"supplier_id" db:"supplier_id"`
	Status         POStatus   `json:"status" db:"status"`
	TotalCost      float64    `json:"total_cost" db:"total_cost"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	ApprovedBy     *string    `json:"approved_by" db:"approved_by"`
	ApprovedAt     *time.Time `json:"approved_at" db:"approved_at"`
	ApprovalNotes  *string    `json:"approval_notes" db:"approval_notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	Supplier *Supplier           `json:"supplier,omitempty"`
	Items    []PurchaseOrderItem `json:"items,omitempty"`
}

type PurchaseOrderItem struct {
	ID              string  `json:"id" db:"id"`
	PurchaseOrderID string  `json:"purchase_order_id" db:"purchase_order_id"`
	SKUID           string  `json:"sku_id" db:"sku_id"`
	Quantity        int     `json:"quantity" db:"quantity"`
	UnitCost        float64 `json:"unit_cost" db:"unit_cost"`

	SKU *SKU `json:"sku,omitempty"`
}

// InboundShipment is derived from an approved purchase order. The reference
// is generated at creation time and unique at the storage layer.
type InboundShipment struct {
	ID                string         `json:"id" db:"id"`
	PurchaseOrderID   string         `json:"purchase_order_id" db:"purchase_order_id"`
	OrganizationID    string         `json:"organization_id" db:"organization_id"`
	Status            ShipmentStatus `json:"status" db:"status"`
	ShipmentReference string         `json:"shipment_reference" db:"shipment_reference"`
	Cartons           int            `json:"cartons" db:"cartons"`
	WeightPerCarton   float64        `json:"weight_per_carton" db:"weight_per_carton"`
	Length            float64        `json:"length" db:"length"`
	Width             float64        `json:"width" db:"width"`
	Height            float64        `json:"height" db:"height"`
	CreatedBy         string         `json:"created_by" db:"created_by"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

// AuditLog records who did what to which entity, scoped to an organization.
type AuditLog struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Action         string    `json:"action" db:"action"`
	EntityType     string    `json:"entity_type" db:"entity_type"`
	EntityID       string    `json:"entity_id" db:"entity_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse is the JSON success envelope for mutations.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
