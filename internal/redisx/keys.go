package redisx

import "time"

const (
	// Active organization per session: active_org:{session_id} -> organization_id.
	// Scoped to the token's session, not the user account, so two devices can
	// point at different organizations.
	KeyActiveOrg = "active_org:%s"

	// Cache of PO status for cheap detail reads: po_status:{po_id} -> status
	KeyPOStatus = "po_status:%s"
)

var (
	TTLActiveOrg   = 30 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
