package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestTeam(t *testing.T) *Team {
	t.Helper()
	team, err := NewTeam("team-1", "user-1", Profile{Name: "Neon Ninjas"})
	if err != nil {
		t.Fatalf("NewTeam: %v", err)
	}
	return team
}

func TestNewTeamInstallsOwner(t *testing.T) {
	team := newTestTeam(t)
	if team.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q, want user-1", team.OwnerID)
	}
	role, ok := team.RoleOf("user-1")
	if !ok || role != RoleOwner {
		t.Errorf("RoleOf(user-1) = %q, %v, want Owner, true", role, ok)
	}
	if team.Version != 1 {
		t.Errorf("Version = %d, want 1", team.Version)
	}
	if err := team.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestNewTeamValidation(t *testing.T) {
	if _, err := NewTeam("", "user-1", Profile{Name: "x"}); !errors.Is(err, ErrInvalidParticipant) {
		t.Errorf("empty id: err = %v, want ErrInvalidParticipant", err)
	}
	if _, err := NewTeam("team-1", "", Profile{Name: "x"}); !errors.Is(err, ErrInvalidParticipant) {
		t.Errorf("empty owner: err = %v, want ErrInvalidParticipant", err)
	}
	if _, err := NewTeam("team-1", "user-1", Profile{}); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("empty name: err = %v, want ErrInvalidProfile", err)
	}

	team := newTestTeam(t)
	if _, err := team.UpdateProfile(Profile{}); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("UpdateProfile empty name: err = %v, want ErrInvalidProfile", err)
	}
}

func TestAddMember(t *testing.T) {
	team := newTestTeam(t)
	ev, err := team.AddMember("user-2", RoleChief)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if ev.Type != EventMemberAdded || ev.SubjectID != "user-2" || ev.Role != RoleChief {
		t.Errorf("event = %+v, want member_added for user-2 as Chief", ev)
	}
	if team.Version != 2 {
		t.Errorf("Version = %d, want 2", team.Version)
	}

	if _, err := team.AddMember("user-2", RoleMember); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("duplicate AddMember err = %v, want ErrAlreadyMember", err)
	}
	if _, err := team.AddMember("user-3", RoleOwner); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("AddMember(Owner) err = %v, want ErrInvalidRole", err)
	}
	if team.Version != 2 {
		t.Errorf("failed operations must not bump version; Version = %d", team.Version)
	}
}

func TestAddMemberClearsPendingProposals(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RecordJoinRequest("user-2", ""); err != nil {
		t.Fatalf("RecordJoinRequest: %v", err)
	}
	if _, err := team.AddMember("user-2", RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, ok := team.JoinRequests["user-2"]; ok {
		t.Error("pending join request should be cleared when the user becomes a member")
	}
	if err := team.CheckInvariants(); err != nil {
		t.Errorf("invariants: %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RemoveMember("user-9"); !errors.Is(err, ErrNotMember) {
		t.Errorf("RemoveMember(stranger) err = %v, want ErrNotMember", err)
	}
	if _, err := team.RemoveMember("user-1"); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Errorf("RemoveMember(owner) err = %v, want ErrCannotRemoveOwner", err)
	}
	if _, err := team.AddMember("user-2", RoleMember); err != nil {
		t.Fatal(err)
	}
	ev, err := team.RemoveMember("user-2")
	if err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if ev.Type != EventMemberRemoved {
		t.Errorf("event type = %q, want member_removed", ev.Type)
	}
	if _, ok := team.RoleOf("user-2"); ok {
		t.Error("user-2 should no longer be a member")
	}
}

func TestChangeRole(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.AddMember("user-2", RoleMember); err != nil {
		t.Fatal(err)
	}
	ev, err := team.ChangeRole("user-2", RoleDeputyLeader)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if ev.Type != EventRoleChanged || ev.Role != RoleDeputyLeader {
		t.Errorf("event = %+v, want role_changed to Deputy Leader", ev)
	}
	if role, _ := team.RoleOf("user-2"); role != RoleDeputyLeader {
		t.Errorf("role = %q, want Deputy Leader", role)
	}

	if _, err := team.ChangeRole("user-2", RoleOwner); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ChangeRole(Owner) err = %v, want ErrInvalidRole", err)
	}
	if _, err := team.ChangeRole("user-1", RoleMember); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ChangeRole targeting the owner err = %v, want ErrInvalidRole", err)
	}
	if _, err := team.ChangeRole("user-9", RoleMember); !errors.Is(err, ErrNotMember) {
		t.Errorf("ChangeRole(stranger) err = %v, want ErrNotMember", err)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RecordJoinRequest("user-1", "hi"); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("member join request err = %v, want ErrAlreadyMember", err)
	}
	if _, err := team.RecordJoinRequest("user-2", "let me in"); err != nil {
		t.Fatalf("RecordJoinRequest: %v", err)
	}
	if _, err := team.RecordJoinRequest("user-2", "again"); !errors.Is(err, ErrDuplicatePendingRequest) {
		t.Errorf("duplicate request err = %v, want ErrDuplicatePendingRequest", err)
	}

	ev, err := team.ResolveJoinRequest("user-2", true)
	if err != nil {
		t.Fatalf("ResolveJoinRequest: %v", err)
	}
	if ev.Type != EventJoinRequestAccepted || ev.Role != RoleMember {
		t.Errorf("event = %+v, want join_request_accepted as Member", ev)
	}
	if role, ok := team.RoleOf("user-2"); !ok || role != RoleMember {
		t.Errorf("RoleOf(user-2) = %q, %v, want Member, true", role, ok)
	}
	if _, ok := team.JoinRequests["user-2"]; ok {
		t.Error("accepted request should be removed from the pending set")
	}
	if _, err := team.ResolveJoinRequest("user-2", true); !errors.Is(err, ErrNoPendingRequest) {
		t.Errorf("second resolve err = %v, want ErrNoPendingRequest", err)
	}
}

func TestRejectJoinRequest(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RecordJoinRequest("user-2", ""); err != nil {
		t.Fatal(err)
	}
	ev, err := team.ResolveJoinRequest("user-2", false)
	if err != nil {
		t.Fatalf("ResolveJoinRequest(reject): %v", err)
	}
	if ev.Type != EventJoinRequestRejected {
		t.Errorf("event type = %q, want join_request_rejected", ev.Type)
	}
	if _, ok := team.RoleOf("user-2"); ok {
		t.Error("rejected user must not become a member")
	}
	if _, ok := team.JoinRequests["user-2"]; ok {
		t.Error("rejected request should be removed from the pending set")
	}
}

func TestInvitationLifecycle(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RecordInvitation("user-1", "user-1", ""); !errors.Is(err, ErrInvalidParticipant) {
		t.Errorf("self-invitation err = %v, want ErrInvalidParticipant", err)
	}
	if _, err := team.RecordInvitation("user-1", "user-2", "join us"); err != nil {
		t.Fatalf("RecordInvitation: %v", err)
	}
	if _, err := team.RecordInvitation("user-1", "user-2", ""); !errors.Is(err, ErrDuplicatePendingInvitation) {
		t.Errorf("duplicate invitation err = %v, want ErrDuplicatePendingInvitation", err)
	}

	ev, err := team.ResolveInvitation("user-2", true)
	if err != nil {
		t.Fatalf("ResolveInvitation: %v", err)
	}
	if ev.Type != EventInvitationAccepted {
		t.Errorf("event type = %q, want invitation_accepted", ev.Type)
	}
	if role, ok := team.RoleOf("user-2"); !ok || role != RoleMember {
		t.Errorf("RoleOf(user-2) = %q, %v, want Member, true", role, ok)
	}
	if _, err := team.ResolveInvitation("user-2", true); !errors.Is(err, ErrNoPendingInvitation) {
		t.Errorf("second resolve err = %v, want ErrNoPendingInvitation", err)
	}
	if _, err := team.RecordInvitation("user-1", "user-2", ""); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("inviting a member err = %v, want ErrAlreadyMember", err)
	}
}

func TestRevokeInvitation(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RevokeInvitation("user-2"); !errors.Is(err, ErrNoPendingInvitation) {
		t.Errorf("revoke without invite err = %v, want ErrNoPendingInvitation", err)
	}
	if _, err := team.RecordInvitation("user-1", "user-2", ""); err != nil {
		t.Fatal(err)
	}
	ev, err := team.RevokeInvitation("user-2")
	if err != nil {
		t.Fatalf("RevokeInvitation: %v", err)
	}
	if ev.Type != EventInvitationRevoked {
		t.Errorf("event type = %q, want invitation_revoked", ev.Type)
	}
	if _, ok := team.Invitations["user-2"]; ok {
		t.Error("revoked invitation should be removed from the pending set")
	}
}

func TestTransferOwnership(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.TransferOwnership("user-2"); !errors.Is(err, ErrNotMember) {
		t.Errorf("transfer to stranger err = %v, want ErrNotMember", err)
	}
	if _, err := team.TransferOwnership("user-1"); !errors.Is(err, ErrInvalidParticipant) {
		t.Errorf("transfer to self err = %v, want ErrInvalidParticipant", err)
	}
	if _, err := team.AddMember("user-2", RoleMember); err != nil {
		t.Fatal(err)
	}
	ev, err := team.TransferOwnership("user-2")
	if err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if ev.Type != EventOwnershipTransferred || ev.SubjectID != "user-2" {
		t.Errorf("event = %+v, want ownership_transferred to user-2", ev)
	}
	if team.OwnerID != "user-2" {
		t.Errorf("OwnerID = %q, want user-2", team.OwnerID)
	}
	if role, _ := team.RoleOf("user-2"); role != RoleOwner {
		t.Errorf("new owner role = %q, want Owner", role)
	}
	if role, _ := team.RoleOf("user-1"); role != RoleLeader {
		t.Errorf("previous owner role = %q, want Leader", role)
	}
	if err := team.CheckInvariants(); err != nil {
		t.Errorf("invariants after transfer: %v", err)
	}
}

func TestLeave(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.Leave("user-1"); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Errorf("owner leave err = %v, want ErrOwnerCannotLeave", err)
	}
	if _, err := team.Leave("user-9"); !errors.Is(err, ErrNotMember) {
		t.Errorf("stranger leave err = %v, want ErrNotMember", err)
	}
	if _, err := team.AddMember("user-2", RoleMember); err != nil {
		t.Fatal(err)
	}
	ev, err := team.Leave("user-2")
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if ev.Type != EventMemberLeft {
		t.Errorf("event type = %q, want member_left", ev.Type)
	}
}

func TestDisbandIsTerminal(t *testing.T) {
	team := newTestTeam(t)
	ev, err := team.Disband()
	if err != nil {
		t.Fatalf("Disband: %v", err)
	}
	if ev.Type != EventTeamDisbanded {
		t.Errorf("event type = %q, want team_disbanded", ev.Type)
	}
	if _, err := team.Disband(); !errors.Is(err, ErrTeamDisbanded) {
		t.Errorf("second disband err = %v, want ErrTeamDisbanded", err)
	}
	if _, err := team.AddMember("user-2", RoleMember); !errors.Is(err, ErrTeamDisbanded) {
		t.Errorf("AddMember after disband err = %v, want ErrTeamDisbanded", err)
	}
	if _, err := team.RecordJoinRequest("user-2", ""); !errors.Is(err, ErrTeamDisbanded) {
		t.Errorf("RecordJoinRequest after disband err = %v, want ErrTeamDisbanded", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	team := newTestTeam(t)
	if _, err := team.RecordJoinRequest("user-2", ""); err != nil {
		t.Fatal(err)
	}
	c := team.Clone()
	if _, err := c.ResolveJoinRequest("user-2", true); err != nil {
		t.Fatalf("ResolveJoinRequest on clone: %v", err)
	}
	if _, ok := team.RoleOf("user-2"); ok {
		t.Error("mutating the clone must not affect the original")
	}
	if team.Version == c.Version {
		t.Error("clone version should have advanced independently")
	}
}

// TestInvariantsUnderRandomCommands drives the aggregate with a seeded random
// command sequence and asserts the structural invariants after every
// successful step.
func TestInvariantsUnderRandomCommands(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	roles := []Role{RoleLeader, RoleDeputyLeader, RoleChief, RoleFoundingMember, RoleMember}

	team, err := NewTeam("team-rand", users[0], Profile{Name: "Fuzz"})
	if err != nil {
		t.Fatal(err)
	}
	prevVersion := team.Version

	for i := 0; i < 2000; i++ {
		u := users[rng.Intn(len(users))]
		v := users[rng.Intn(len(users))]
		var ev *Event
		var opErr error
		switch rng.Intn(9) {
		case 0:
			ev, opErr = team.AddMember(u, roles[rng.Intn(len(roles))])
		case 1:
			ev, opErr = team.RemoveMember(u)
		case 2:
			ev, opErr = team.ChangeRole(u, roles[rng.Intn(len(roles))])
		case 3:
			ev, opErr = team.RecordJoinRequest(u, "")
		case 4:
			ev, opErr = team.ResolveJoinRequest(u, rng.Intn(2) == 0)
		case 5:
			ev, opErr = team.RecordInvitation(u, v, "")
		case 6:
			ev, opErr = team.ResolveInvitation(u, rng.Intn(2) == 0)
		case 7:
			ev, opErr = team.TransferOwnership(u)
		case 8:
			ev, opErr = team.Leave(u)
		}
		if opErr != nil {
			if team.Version != prevVersion {
				t.Fatalf("step %d: failed command changed version from %d to %d", i, prevVersion, team.Version)
			}
			continue
		}
		if ev == nil {
			t.Fatalf("step %d: successful command returned nil event", i)
		}
		if team.Version != prevVersion+1 {
			t.Fatalf("step %d: version = %d, want %d", i, team.Version, prevVersion+1)
		}
		prevVersion = team.Version
		if err := team.CheckInvariants(); err != nil {
			t.Fatalf("step %d: invariants violated: %v", i, err)
		}
	}
}
