package models

import (
	"errors"
	"testing"
)

func TestNormalizeItems_DropsInvalidLines(t *testing.T) {
	items, err := NormalizeItems([]POItemInput{
		{SKUID: "sku-1", Quantity: 10, UnitCost: 2.5},
		{SKUID: "", Quantity: 5, UnitCost: 1},
		{SKUID: "sku-2", Quantity: 0, UnitCost: 1},
		{SKUID: "sku-3", Quantity: -2, UnitCost: 1},
		{SKUID: "sku-4", Quantity: 3, UnitCost: 5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 surviving items, got %d", len(items))
	}
	if items[0].SKUID != "sku-1" || items[1].SKUID != "sku-4" {
		t.Fatalf("wrong items survived: %+v", items)
	}
}

func TestNormalizeItems_AllInvalid(t *testing.T) {
	_, err := NormalizeItems([]POItemInput{
		{SKUID: "", Quantity: 5},
		{SKUID: "sku-1", Quantity: 0},
	})
	if !errors.Is(err, ErrNoValidItems) {
		t.Fatalf("expected ErrNoValidItems, got %v", err)
	}
}

func TestNormalizeItems_Empty(t *testing.T) {
	_, err := NormalizeItems(nil)
	if !errors.Is(err, ErrNoValidItems) {
		t.Fatalf("expected ErrNoValidItems, got %v", err)
	}
}

func TestNormalizeItems_NegativeUnitCost(t *testing.T) {
	_, err := NormalizeItems([]POItemInput{
		{SKUID: "sku-1", Quantity: 2, UnitCost: -0.01},
	})
	if !errors.Is(err, ErrNegativeUnitCost) {
		t.Fatalf("expected ErrNegativeUnitCost, got %v", err)
	}
}

func TestNormalizeItems_NegativeCostOnDroppedLineIgnored(t *testing.T) {
	// A negative cost only matters on lines that survive the filter
	items, err := NormalizeItems([]POItemInput{
		{SKUID: "", Quantity: 1, UnitCost: -5},
		{SKUID: "sku-1", Quantity: 1, UnitCost: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestItemsTotal(t *testing.T) {
	total := ItemsTotal([]POItemInput{
		{SKUID: "sku-1", Quantity: 10, UnitCost: 2.5},
		{SKUID: "sku-2", Quantity: 3, UnitCost: 5},
	})
	if total != 40.0 {
		t.Fatalf("expected total 40.00, got %v", total)
	}
}

func TestItemsTotal_Empty(t *testing.T) {
	if total := ItemsTotal(nil); total != 0 {
		t.Fatalf("expected 0, got %v", total)
	}
}

func TestItemsTotal_ZeroCostLines(t *testing.T) {
	total := ItemsTotal([]POItemInput{
		{SKUID: "sku-1", Quantity: 100, UnitCost: 0},
	})
	if total != 0 {
		t.Fatalf("expected 0, got %v", total)
	}
}
