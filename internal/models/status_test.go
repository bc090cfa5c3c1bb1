package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to POStatus }{
		{POStatusDraft, POStatusSubmitted},
		{POStatusSubmitted, POStatusApproved},
		{POStatusSubmitted, POStatusCancelled},
		{POStatusApproved, POStatusReceived},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransition_TerminalStates(t *testing.T) {
	all := []POStatus{POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusReceived, POStatusCancelled}
	for _, to := range all {
		if CanTransition(POStatusReceived, to) {
			t.Errorf("received must be terminal, got received -> %s allowed", to)
		}
		if CanTransition(POStatusCancelled, to) {
			t.Errorf("cancelled must be terminal, got cancelled -> %s allowed", to)
		}
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	forbidden := []struct{ from, to POStatus }{
		{POStatusDraft, POStatusApproved},
		{POStatusDraft, POStatusReceived},
		{POStatusDraft, POStatusCancelled},
		{POStatusSubmitted, POStatusReceived},
		{POStatusSubmitted, POStatusDraft},
		{POStatusApproved, POStatusSubmitted},
		{POStatusApproved, POStatusCancelled},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s must be forbidden", tc.from, tc.to)
		}
	}
}

func TestCanTransition_SelfLoopsForbidden(t *testing.T) {
	all := []POStatus{POStatusDraft, POStatusSubmitted, POStatusApproved, POStatusReceived, POStatusCancelled}
	for _, s := range all {
		if CanTransition(s, s) {
			t.Errorf("%s -> %s must be forbidden", s, s)
		}
	}
}

func TestShipmentStatus_NoOrderingConstraint(t *testing.T) {
	// Shipment status is set, not transitioned: there is deliberately no
	// transition table, so delivered -> created is as settable as
	// created -> in_transit. Operators use this to correct mistakes; the
	// update path only checks validity.
	all := []ShipmentStatus{ShipmentStatusCreated, ShipmentStatusInTransit, ShipmentStatusDelivered}
	for _, from := range all {
		for _, to := range all {
			if !to.IsValid() {
				t.Errorf("setting %s from %s must be allowed", to, from)
			}
		}
	}
}

func TestShipmentStatusIsValid(t *testing.T) {
	for _, s := range []ShipmentStatus{ShipmentStatusCreated, ShipmentStatusInTransit, ShipmentStatusDelivered} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []ShipmentStatus{"", "lost", "CREATED"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
