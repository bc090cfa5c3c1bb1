package models

// POStatus represents the lifecycle state of a purchase order
type POStatus string

const (
	POStatusDraft     POStatus = "draft"
	POStatusSubmitted POStatus = "submitted"
	POStatusApproved  POStatus = "approved"
	POStatusReceived  POStatus = "received"
	POStatusCancelled POStatus = "cancelled"
)

// IsValid checks if the status is one of the known values
func (s POStatus) IsValid() bool {
	switch s {
	case POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusReceived, POStatusCancelled:
		return true
	default:
		return false
	}
}

// validNext is the purchase order transition table. Approve and reject are
// mutually exclusive decisions out of submitted; received and cancelled are
// terminal.
var validNext = map[POStatus]map[POStatus]bool{
	POStatusDraft:     {POStatusSubmitted: true},
	POStatusSubmitted: {POStatusApproved: true, POStatusCancelled: true},
	POStatusApproved:  {POStatusReceived: true},
	POStatusReceived:  {},
	POStatusCancelled: {},
}

// CanTransition reports whether a purchase order may move from one status
// to another.
func CanTransition(from, to POStatus) bool {
	return validNext[from][to]
}

// ShipmentStatus represents the state of an inbound shipment
type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "created"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// IsValid checks if the shipment status is one of the known values.
// Shipment progression is deliberately unordered: status may be set to any
// valid value, matching the lenient behavior of the admin workflow.
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusCreated, ShipmentStatusInTransit, ShipmentStatusDelivered:
		return true
	default:
		return false
	}
}
