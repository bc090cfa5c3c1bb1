package events

import (
	"encoding/json"
	"time"
)

const (
	EventPOCreated       = "PurchaseOrderCreated"
	EventPOSubmitted     = "PurchaseOrderSubmitted"
	EventPOApproved      = "PurchaseOrderApproved"
	EventPORejected      = "PurchaseOrderRejected"
	EventPOReceived      = "PurchaseOrderReceived"
	EventShipmentCreated = "ShipmentCreated"
)

// Envelope is the versioned wrapper every lifecycle event is published in.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // purchase order id
	Payload       json.RawMessage `json:"payload"`
}

type POCreatedPayload struct {
	PurchaseOrderID string  `json:"purchase_order_id"`
	OrganizationID  string  `json:"organization_id"`
	SupplierID      string  `json:"supplier_id"`
	Status          string  `json:"status"`
	TotalCost       float64 `json:"total_cost"`
	CreatedBy       string  `json:"created_by"`
	ItemCount       int     `json:"item_count"`
}

type PODecisionPayload struct {
	PurchaseOrderID string `json:"purchase_order_id"`
	OrganizationID  string `json:"organization_id"`
	Status          string `json:"status"`
	DecidedBy       string `json:"decided_by"`
	Notes           string `json:"notes,omitempty"`
}

type ShipmentCreatedPayload struct {
	ShipmentID        string `json:"shipment_id"`
	PurchaseOrderID   string `json:"purchase_order_id"`
	OrganizationID    string `json:"organization_id"`
	ShipmentReference string `json:"shipment_reference"`
	Cartons           int    `json:"cartons"`
	CreatedBy         string `json:"created_by"`
}

// PartitionKey keeps all events of one purchase order on the same partition
// so ordering is preserved per PO.
func PartitionKey(poID string) []byte { return []byte(poID) }

// MustMarshal panics on marshal failure; payload types are plain structs and
// cannot fail to encode.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
