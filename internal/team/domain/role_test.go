package domain

import "testing"

func TestRoleRankOrdering(t *testing.T) {
	ordered := []Role{RoleMember, RoleFoundingMember, RoleChief, RoleDeputyLeader, RoleLeader, RoleOwner}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("Rank(%s) = %d, want > Rank(%s) = %d", ordered[i], ordered[i].Rank(), ordered[i-1], ordered[i-1].Rank())
		}
	}
	if Role("Coach").Rank() != 0 {
		t.Errorf("unknown role rank = %d, want 0", Role("Coach").Rank())
	}
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role     Role
		manage   bool
		disband  bool
		transfer bool
	}{
		{RoleOwner, true, true, true},
		{RoleLeader, true, false, false},
		{RoleDeputyLeader, false, false, false},
		{RoleChief, false, false, false},
		{RoleFoundingMember, false, false, false},
		{RoleMember, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.role.CanManageMembers(); got != tt.manage {
			t.Errorf("%s.CanManageMembers() = %v, want %v", tt.role, got, tt.manage)
		}
		if got := tt.role.CanDisband(); got != tt.disband {
			t.Errorf("%s.CanDisband() = %v, want %v", tt.role, got, tt.disband)
		}
		if got := tt.role.CanInitiateTransfer(); got != tt.transfer {
			t.Errorf("%s.CanInitiateTransfer() = %v, want %v", tt.role, got, tt.transfer)
		}
	}
}

func TestAssignable(t *testing.T) {
	if RoleOwner.Assignable() {
		t.Error("Owner must not be assignable")
	}
	for _, r := range []Role{RoleLeader, RoleDeputyLeader, RoleChief, RoleFoundingMember, RoleMember} {
		if !r.Assignable() {
			t.Errorf("%s should be assignable", r)
		}
	}
	if Role("").Assignable() {
		t.Error("empty role must not be assignable")
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Deputy Leader")
	if err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
	if r != RoleDeputyLeader {
		t.Errorf("ParseRole = %q, want %q", r, RoleDeputyLeader)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Error("ParseRole should reject unknown casing")
	}
}
