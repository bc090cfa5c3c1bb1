package models

// CreatePurchaseOrderRequest creates a purchase order with its items in one
// transaction. Status may be draft or submitted; anything else is rejected.
type CreatePurchaseOrderRequest struct {
	SupplierID string        `json:"supplier_id" binding:"required"`
	Items      []POItemInput `json:"items" binding:"required"`
	Status     POStatus      `json:"status"`
}

// DecisionRequest carries the optional notes for an approve or reject call.
type DecisionRequest struct {
	Notes string `json:"notes"`
}

// CreateShipmentRequest creates an inbound shipment against an approved PO.
type CreateShipmentRequest struct {
	Cartons         int     `json:"cartons" binding:"required"`
	WeightPerCarton float64 `json:"weight_per_carton"`
	Length          float64 `json:"length"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
}

// UpdateShipmentStatusRequest sets a shipment status to any valid value.
type UpdateShipmentStatusRequest struct {
	Status ShipmentStatus `json:"status" binding:"required"`
}

// SetRoleRequest assigns or changes a user's role in the active organization.
type SetRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// SelectOrganizationRequest persists the session's active organization.
type SelectOrganizationRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

// MeResponse is the identity resolution payload: the user, their memberships,
// the resolved active organization and role, and whether they are still
// pending approval (zero memberships).
type MeResponse struct {
	User        User          `json:"user"`
	Memberships []Membership  `json:"memberships"`
	ActiveOrg   *Organization `json:"active_organization"`
	Role        *Role         `json:"role"`
	Pending     bool          `json:"pending"`
}

// UserWithRole is one row of the access-approvals listing. A nil role marks
// a user awaiting approval.
type UserWithRole struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
	Role     *Role  `json:"current_role"`
}

// CreateProductRequest creates a product in the active organization.
type CreateProductRequest struct {
	Title string `json:"title" binding:"required"`
	Brand string `json:"brand"`
}

// CreateSKURequest creates a SKU under a product.
type CreateSKURequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Code      string  `json:"sku" binding:"required"`
	ASIN      string  `json:"asin"`
	FNSKU     string  `json:"fnsku"`
	Cost      float64 `json:"cost"`
}

// CreateSupplierRequest creates a supplier in the active organization.
type CreateSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email"`
	PaymentTerms string `json:"payment_terms"`
}

// CreateWarehouseRequest creates a warehouse in the active organization.
type CreateWarehouseRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// UpsertInventoryRequest sets the stock level for a SKU at a warehouse.
type UpsertInventoryRequest struct {
	SKUID       string `json:"sku_id" binding:"required"`
	WarehouseID string `json:"warehouse_id" binding:"required"`
	Quantity    int    `json:"quantity"`
}

// UpdateOrganizationRequest renames the active organization.
type UpdateOrganizationRequest struct {
	Name string `json:"name" binding:"required"`
}

// DashboardSummary is the landing-page counters payload.
type DashboardSummary struct {
	Products      int     `json:"products"`
	SKUs          int     `json:"skus"`
	Suppliers     int     `json:"suppliers"`
	PendingPOs    int     `json:"pending_purchase_orders"`
	OpenShipments int     `json:"open_shipments"`
	TotalPOSpend  float64 `json:"total_po_spend"`
}
