package models

import "testing"

func rolePtr(r Role) *Role { return &r }

func TestCanPerform_NilRoleDeniedEverything(t *testing.T) {
	actions := []Action{
		ActionCreatePO, ActionViewAllPOs, ActionApprovePO, ActionEditPO, ActionDeletePO,
		ActionCreateShipment, ActionManageShipments, ActionManageUsers, ActionAccessSettings, ActionViewDashboard,
	}
	for _, action := range actions {
		if CanPerform(nil, action) {
			t.Errorf("nil role must be denied %s", action)
		}
	}
}

func TestCanPerform_AdminAllowedEverything(t *testing.T) {
	actions := []Action{
		ActionCreatePO, ActionViewAllPOs, ActionApprovePO, ActionEditPO, ActionDeletePO,
		ActionCreateShipment, ActionManageShipments, ActionManageUsers, ActionAccessSettings, ActionViewDashboard,
	}
	for _, action := range actions {
		if !CanPerform(rolePtr(RoleAdmin), action) {
			t.Errorf("admin must be allowed %s", action)
		}
	}
}

func TestCanPerform_NonAdminRoles(t *testing.T) {
	roles := []Role{RoleManager, RolePurchasing, RoleWarehouse, RoleAccounting, RoleViewer}

	for _, role := range roles {
		if !CanPerform(rolePtr(role), ActionCreatePO) {
			t.Errorf("%s must be allowed to create purchase orders", role)
		}
		if !CanPerform(rolePtr(role), ActionViewDashboard) {
			t.Errorf("%s must be allowed to view the dashboard", role)
		}

		denied := []Action{
			ActionViewAllPOs, ActionApprovePO, ActionEditPO, ActionDeletePO,
			ActionCreateShipment, ActionManageShipments, ActionManageUsers, ActionAccessSettings,
		}
		for _, action := range denied {
			if CanPerform(rolePtr(role), action) {
				t.Errorf("%s must be denied %s", role, action)
			}
		}
	}
}

func TestCanPerform_UnknownRoleDenied(t *testing.T) {
	if CanPerform(rolePtr(Role("superuser")), ActionCreatePO) {
		t.Error("unknown role must be denied")
	}
}

func TestRoleIsValid(t *testing.T) {
	valid := []Role{RoleAdmin, RoleManager, RolePurchasing, RoleWarehouse, RoleAccounting, RoleViewer}
	for _, r := range valid {
		if !r.IsValid() {
			t.Errorf("%s should be valid", r)
		}
	}
	invalid := []Role{"", "root", "ADMIN"}
	for _, r := range invalid {
		if r.IsValid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}
