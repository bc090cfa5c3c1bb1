package models

// Role is the per-organization access level assigned by an admin. A user
// with no membership row has no role at all and is treated as pending.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RolePurchasing Role = "purchasing"
	RoleWarehouse  Role = "warehouse"
	RoleAccounting Role = "accounting"
	RoleViewer     Role = "viewer"
)

// IsValid checks if the role is one of the known values
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RolePurchasing, RoleWarehouse, RoleAccounting, RoleViewer:
		return true
	default:
		return false
	}
}

// Action is a gated operation. Every mutating endpoint and every gated list
// is guarded by exactly one action.
type Action string

const (
	ActionCreatePO        Action = "createPO"
	ActionViewAllPOs      Action = "viewAllPOs"
	ActionApprovePO       Action = "approvePO"
	ActionEditPO          Action = "editPO"
	ActionDeletePO        Action = "deletePO"
	ActionCreateShipment  Action = "createShipment"
	ActionManageShipments Action = "manageShipments"
	ActionManageUsers     Action = "manageUsers"
	ActionAccessSettings  Action = "accessSettings"
	ActionViewDashboard   Action = "viewDashboard"
)

// openToAllMembers marks the actions every role may perform. Everything else
// is admin-only: the enumerated non-admin roles exist for display and audit,
// authorization itself is a binary admin/member split.
var openToAllMembers = map[Action]bool{
	ActionCreatePO:      true,
	ActionViewDashboard: true,
}

// CanPerform decides whether a role may perform an action. A nil role (user
// without a membership, pending approval) is denied everything, including
// viewDashboard.
func CanPerform(role *Role, action Action) bool {
	if role == nil || !role.IsValid() {
		return false
	}
	if *role == RoleAdmin {
		return true
	}
	return openToAllMembers[action]
}
