package models

import "errors"

// POItemInput is one order line as submitted by the client.
type POItemInput struct {
	SKUID    string  `json:"sku_id"`
	Quantity int     `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
}

var (
	// ErrNoValidItems is returned when filtering leaves nothing to order.
	ErrNoValidItems = errors.New("purchase order requires at least one item with a SKU and a positive quantity")
	// ErrNegativeUnitCost is returned when a remaining line carries a negative cost.
	ErrNegativeUnitCost = errors.New("unit cost must not be negative")
)

// NormalizeItems drops lines with no SKU or a non-positive quantity, mirroring
// the creation-time filtering the order form applies. It fails when nothing
// survives the filter or a surviving line has a negative unit cost.
func NormalizeItems(items []POItemInput) ([]POItemInput, error) {
	valid := make([]POItemInput, 0, len(items))
	for _, item := range items {
		if item.SKUID == "" || item.Quantity <= 0 {
			continue
		}
		if item.UnitCost < 0 {
			return nil, ErrNegativeUnitCost
		}
		valid = append(valid, item)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidItems
	}
	return valid, nil
}

// ItemsTotal computes the order total as the sum of quantity times unit cost
// at creation instant. The total is not kept in sync afterwards; no item
// update path exists.
func ItemsTotal(items []POItemInput) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.UnitCost
	}
	return total
}
