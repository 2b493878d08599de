package domain

import (
	"fmt"
	"time"
)

// Membership links a user to a team with a role.
type Membership struct {
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// JoinRequestStatus is the lifecycle status of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestAccepted JoinRequestStatus = "accepted"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a user's request to join a team. At most one pending request
// per (team, user).
type JoinRequest struct {
	UserID    string            `json:"userId"`
	Message   string            `json:"message,omitempty"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// InvitationStatus is the lifecycle status of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationRevoked  InvitationStatus = "revoked"
)

// Invitation is a member's invitation to an outside user. At most one pending
// invitation per (team, invitee).
type Invitation struct {
	InviterID string           `json:"inviterId"`
	InviteeID string           `json:"inviteeId"`
	Message   string           `json:"message,omitempty"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Profile holds team display metadata. None of it participates in governance
// decisions; it is carried for the describe projection and team listings.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Country     string `json:"country,omitempty"`
	Region      string `json:"region,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Level       string `json:"level,omitempty"`
	TeamMessage string `json:"teamMessage,omitempty"`
}

// Team is the governance aggregate for one team. All invariants are checked
// and committed as one unit; mutations go through the operation methods below,
// which bump Version on success. A command operates on its own loaded copy and
// commits via the repository's compare-and-swap on Version.
type Team struct {
	ID           string                 `json:"id"`
	Profile      Profile                `json:"profile"`
	OwnerID      string                 `json:"ownerId"`
	Members      map[string]Membership  `json:"members"`
	JoinRequests map[string]JoinRequest `json:"joinRequests"`
	Invitations  map[string]Invitation  `json:"invitations"`
	Version      int64                  `json:"version"`
	Disbanded    bool                   `json:"disbanded"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// NewTeam creates a team with the founding member as Owner.
func NewTeam(id, ownerID string, profile Profile) (*Team, error) {
	if id == "" || ownerID == "" {
		return nil, fmt.Errorf("%w: team id and owner id are required", ErrInvalidParticipant)
	}
	if profile.Name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrInvalidProfile)
	}
	now := time.Now().UTC()
	return &Team{
		ID:      id,
		Profile: profile,
		OwnerID: ownerID,
		Members: map[string]Membership{
			ownerID: {UserID: ownerID, Role: RoleOwner, JoinedAt: now},
		},
		JoinRequests: map[string]JoinRequest{},
		Invitations:  map[string]Invitation{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns a deep copy. Loaded snapshots are never shared between
// in-flight commands, so repositories hand out clones.
func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.Members = make(map[string]Membership, len(t.Members))
	for k, v := range t.Members {
		c.Members[k] = v
	}
	c.JoinRequests = make(map[string]JoinRequest, len(t.JoinRequests))
	for k, v := range t.JoinRequests {
		c.JoinRequests[k] = v
	}
	c.Invitations = make(map[string]Invitation, len(t.Invitations))
	for k, v := range t.Invitations {
		c.Invitations[k] = v
	}
	return &c
}

// RoleOf returns the member's role and whether the user is a member.
func (t *Team) RoleOf(userID string) (Role, bool) {
	m, ok := t.Members[userID]
	return m.Role, ok
}

// active returns ErrTeamDisbanded on a disbanded aggregate. Every operation
// checks it first; disband is terminal.
func (t *Team) active() error {
	if t.Disbanded {
		return ErrTeamDisbanded
	}
	return nil
}

// commit bumps the version and stamps the event with it.
func (t *Team) commit(ev *Event) *Event {
	t.Version++
	t.UpdatedAt = time.Now().UTC()
	ev.TeamID = t.ID
	ev.Version = t.Version
	ev.CreatedAt = t.UpdatedAt
	return ev
}

// AddMember installs a membership with the given role. The role must be
// assignable; Owner is only installed at creation or via TransferOwnership.
func (t *Team) AddMember(userID string, role Role) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrInvalidParticipant
	}
	if !role.Assignable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if _, ok := t.Members[userID]; ok {
		return nil, ErrAlreadyMember
	}
	t.Members[userID] = Membership{UserID: userID, Role: role, JoinedAt: time.Now().UTC()}
	// A new member cannot also have pending proposals for the same team.
	delete(t.JoinRequests, userID)
	delete(t.Invitations, userID)
	return t.commit(&Event{Type: EventMemberAdded, SubjectID: userID, Role: role}), nil
}

// RemoveMember removes a membership. The Owner can only be removed by
// TransferOwnership followed by removal, never directly.
func (t *Team) RemoveMember(userID string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if _, ok := t.Members[userID]; !ok {
		return nil, ErrNotMember
	}
	if userID == t.OwnerID {
		return nil, ErrCannotRemoveOwner
	}
	delete(t.Members, userID)
	return t.commit(&Event{Type: EventMemberRemoved, SubjectID: userID}), nil
}

// ChangeRole sets a member's role. Owner is never a valid target role, and the
// current Owner's role can only change via TransferOwnership.
func (t *Team) ChangeRole(userID string, newRole Role) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if !newRole.Assignable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, newRole)
	}
	m, ok := t.Members[userID]
	if !ok {
		return nil, ErrNotMember
	}
	if userID == t.OwnerID {
		return nil, fmt.Errorf("%w: use ownership transfer to change the owner", ErrInvalidRole)
	}
	m.Role = newRole
	t.Members[userID] = m
	return t.commit(&Event{Type: EventRoleChanged, SubjectID: userID, Role: newRole}), nil
}

// RecordJoinRequest files a pending join request for the user.
func (t *Team) RecordJoinRequest(userID, message string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrInvalidParticipant
	}
	if _, ok := t.Members[userID]; ok {
		return nil, ErrAlreadyMember
	}
	if r, ok := t.JoinRequests[userID]; ok && r.Status == JoinRequestPending {
		return nil, ErrDuplicatePendingRequest
	}
	t.JoinRequests[userID] = JoinRequest{
		UserID:    userID,
		Message:   message,
		Status:    JoinRequestPending,
		CreatedAt: time.Now().UTC(),
	}
	return t.commit(&Event{Type: EventJoinRequested, SubjectID: userID}), nil
}

// ResolveJoinRequest accepts or rejects a pending join request. Accepting
// installs a Member-role membership and clears any pending invitation for the
// same user so a member never carries a pending proposal.
func (t *Team) ResolveJoinRequest(userID string, accept bool) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	r, ok := t.JoinRequests[userID]
	if !ok || r.Status != JoinRequestPending {
		return nil, ErrNoPendingRequest
	}
	if !accept {
		delete(t.JoinRequests, userID)
		return t.commit(&Event{Type: EventJoinRequestRejected, SubjectID: userID}), nil
	}
	if _, member := t.Members[userID]; member {
		return nil, ErrAlreadyMember
	}
	delete(t.JoinRequests, userID)
	delete(t.Invitations, userID)
	t.Members[userID] = Membership{UserID: userID, Role: RoleMember, JoinedAt: time.Now().UTC()}
	return t.commit(&Event{Type: EventJoinRequestAccepted, SubjectID: userID, Role: RoleMember}), nil
}

// RecordInvitation files a pending invitation from inviter to invitee.
func (t *Team) RecordInvitation(inviterID, inviteeID, message string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if inviteeID == "" || inviterID == inviteeID {
		return nil, ErrInvalidParticipant
	}
	if _, ok := t.Members[inviteeID]; ok {
		return nil, ErrAlreadyMember
	}
	if inv, ok := t.Invitations[inviteeID]; ok && inv.Status == InvitationPending {
		return nil, ErrDuplicatePendingInvitation
	}
	t.Invitations[inviteeID] = Invitation{
		InviterID: inviterID,
		InviteeID: inviteeID,
		Message:   message,
		Status:    InvitationPending,
		CreatedAt: time.Now().UTC(),
	}
	return t.commit(&Event{Type: EventInvitationSent, ActorID: inviterID, SubjectID: inviteeID}), nil
}

// ResolveInvitation accepts or declines a pending invitation, symmetric to
// join-request resolution.
func (t *Team) ResolveInvitation(inviteeID string, accept bool) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	inv, ok := t.Invitations[inviteeID]
	if !ok || inv.Status != InvitationPending {
		return nil, ErrNoPendingInvitation
	}
	if !accept {
		delete(t.Invitations, inviteeID)
		return t.commit(&Event{Type: EventInvitationDeclined, SubjectID: inviteeID}), nil
	}
	if _, member := t.Members[inviteeID]; member {
		return nil, ErrAlreadyMember
	}
	delete(t.Invitations, inviteeID)
	delete(t.JoinRequests, inviteeID)
	t.Members[inviteeID] = Membership{UserID: inviteeID, Role: RoleMember, JoinedAt: time.Now().UTC()}
	return t.commit(&Event{Type: EventInvitationAccepted, SubjectID: inviteeID, Role: RoleMember}), nil
}

// RevokeInvitation withdraws a pending invitation.
func (t *Team) RevokeInvitation(inviteeID string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	inv, ok := t.Invitations[inviteeID]
	if !ok || inv.Status != InvitationPending {
		return nil, ErrNoPendingInvitation
	}
	delete(t.Invitations, inviteeID)
	return t.commit(&Event{Type: EventInvitationRevoked, SubjectID: inviteeID}), nil
}

// TransferOwnership makes an existing member the Owner and demotes the previous
// Owner to Leader. Both role changes and the OwnerID update are applied as one
// commit; the aggregate is never observable with zero or two Owners.
func (t *Team) TransferOwnership(newOwnerID string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if newOwnerID == t.OwnerID {
		return nil, ErrInvalidParticipant
	}
	next, ok := t.Members[newOwnerID]
	if !ok {
		return nil, ErrNotMember
	}
	prev := t.Members[t.OwnerID]
	prev.Role = RoleLeader
	next.Role = RoleOwner
	t.Members[prev.UserID] = prev
	t.Members[next.UserID] = next
	t.OwnerID = newOwnerID
	return t.commit(&Event{Type: EventOwnershipTransferred, ActorID: prev.UserID, SubjectID: newOwnerID, Role: RoleOwner}), nil
}

// Leave removes the caller's own membership. The Owner must transfer or
// disband first.
func (t *Team) Leave(userID string) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if _, ok := t.Members[userID]; !ok {
		return nil, ErrNotMember
	}
	if userID == t.OwnerID {
		return nil, ErrOwnerCannotLeave
	}
	delete(t.Members, userID)
	return t.commit(&Event{Type: EventMemberLeft, SubjectID: userID}), nil
}

// Disband terminally marks the team. All subsequent operations fail with
// ErrTeamDisbanded.
func (t *Team) Disband() (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	t.Disbanded = true
	return t.commit(&Event{Type: EventTeamDisbanded}), nil
}

// UpdateProfile replaces the display metadata. Governance state is untouched.
func (t *Team) UpdateProfile(p Profile) (*Event, error) {
	if err := t.active(); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrInvalidProfile)
	}
	t.Profile = p
	return t.commit(&Event{Type: EventTeamProfileUpdated}), nil
}

// CheckInvariants verifies the structural invariants: exactly one Owner whose
// id matches OwnerID, membership keys match their entries, and no member holds
// a pending request or invitation. Used by tests and by the repository before
// persisting.
func (t *Team) CheckInvariants() error {
	owners := 0
	for id, m := range t.Members {
		if id != m.UserID {
			return fmt.Errorf("membership key %q does not match user id %q", id, m.UserID)
		}
		if m.Role == RoleOwner {
			owners++
			if id != t.OwnerID {
				return fmt.Errorf("member %q holds Owner but ownerId is %q", id, t.OwnerID)
			}
		}
		if r, ok := t.JoinRequests[id]; ok && r.Status == JoinRequestPending {
			return fmt.Errorf("member %q has a pending join request", id)
		}
		if inv, ok := t.Invitations[id]; ok && inv.Status == InvitationPending {
			return fmt.Errorf("member %q has a pending invitation", id)
		}
	}
	if owners != 1 {
		return fmt.Errorf("team has %d owners, want exactly 1", owners)
	}
	if _, ok := t.Members[t.OwnerID]; !ok {
		return fmt.Errorf("ownerId %q is not a member", t.OwnerID)
	}
	return nil
}
