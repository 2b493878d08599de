package domain

import "fmt"

// Role is a team member's role. Roles are totally ordered by Rank; Owner is the
// highest and there is exactly one Owner per team at all times.
type Role string

const (
	RoleOwner          Role = "Owner"
	RoleLeader         Role = "Leader"
	RoleDeputyLeader   Role = "Deputy Leader"
	RoleChief          Role = "Chief"
	RoleFoundingMember Role = "Founding Member"
	RoleMember         Role = "Member"
)

// roleRanks defines the total order. Higher rank means more authority.
var roleRanks = map[Role]int{
	RoleOwner:          6,
	RoleLeader:         5,
	RoleDeputyLeader:   4,
	RoleChief:          3,
	RoleFoundingMember: 2,
	RoleMember:         1,
}

// Rank returns the role's position in the hierarchy (higher is more senior).
// Unknown roles rank 0, below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Assignable reports whether r may be granted via AddMember/ChangeRole.
// Owner is excluded: the Owner role is only installed at team creation or by
// ownership transfer.
func (r Role) Assignable() bool {
	return r.Valid() && r != RoleOwner
}

// CanManageMembers reports whether r may add/remove members, change roles, and
// resolve join requests and invitations. Owner and Leader only.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleLeader
}

// CanDisband reports whether r may disband the team. Owner only.
func (r Role) CanDisband() bool {
	return r == RoleOwner
}

// CanInitiateTransfer reports whether r may transfer team ownership. Owner only.
func (r Role) CanInitiateTransfer() bool {
	return r == RoleOwner
}

// ParseRole converts a wire/storage string to a Role. Returns ErrInvalidRole
// wrapped with the offending value for anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}
