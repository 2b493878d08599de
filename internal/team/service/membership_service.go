package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"gamerie/backend/internal/audit"
	"gamerie/backend/internal/events"
	"gamerie/backend/internal/platform/teamlock"
	"gamerie/backend/internal/team/domain"
	"gamerie/backend/internal/team/repository"
)

// MembershipService processes governance commands against team aggregates.
// Every mutating command follows the same path: acquire the team's slot, load
// a fresh snapshot, gate on the caller's role, apply the aggregate operation,
// compare-and-swap persist, then emit the event async and write a best-effort
// audit entry. Failures are returned verbatim; nothing is retried here.
type MembershipService struct {
	repo    repository.Repository
	guard   *teamlock.Guard
	emitter events.Emitter
	auditor audit.AuditLogger
}

// NewMembershipService returns a MembershipService with the given dependencies.
// emitter and auditor may be nil (events/audit disabled).
func NewMembershipService(repo repository.Repository, guard *teamlock.Guard, emitter events.Emitter, auditor audit.AuditLogger) *MembershipService {
	return &MembershipService{
		repo:    repo,
		guard:   guard,
		emitter: emitter,
		auditor: auditor,
	}
}

// mutation is one governance command: its audit name, the caller gate, and the
// aggregate operation to apply under the team's slot.
type mutation struct {
	command string
	gate    func(t *domain.Team, callerID string) error
	apply   func(t *domain.Team) (*domain.Event, error)
}

// mutate runs a command under the team's slot with compare-and-swap
// persistence. Returns the committed aggregate.
func (s *MembershipService) mutate(ctx context.Context, teamID, callerID string, m mutation) (*domain.Team, error) {
	release, err := s.guard.Acquire(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	defer release()

	t, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if t == nil {
		return nil, domain.ErrTeamNotFound
	}
	expected := t.Version
	if m.gate != nil {
		if err := m.gate(t, callerID); err != nil {
			return nil, err
		}
	}
	ev, err := m.apply(t)
	if err != nil {
		return nil, err
	}
	ev.ID = uuid.New().String()
	if ev.ActorID == "" {
		ev.ActorID = callerID
	}
	ok, err := s.repo.CompareAndSwap(ctx, t, expected)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if !ok {
		return nil, domain.ErrConcurrentModification
	}
	events.EmitAsync(s.emitter, ctx, ev)
	s.auditCommand(ctx, m.command, teamID, callerID, ev)
	return t, nil
}

func (s *MembershipService) auditCommand(ctx context.Context, command, teamID, callerID string, ev *domain.Event) {
	if s.auditor == nil {
		return
	}
	ar := audit.CommandAction(command)
	meta := ""
	if ev != nil {
		if b, err := json.Marshal(ev); err == nil {
			meta = string(b)
		}
	}
	s.auditor.LogEvent(ctx, teamID, callerID, ar.Action, ar.Resource, meta)
}

// requireManager passes for Owner and Leader. Non-members fail with NotMember,
// members with insufficient rank with Forbidden.
func requireManager(t *domain.Team, callerID string) error {
	role, ok := t.RoleOf(callerID)
	if !ok {
		return domain.ErrNotMember
	}
	if !role.CanManageMembers() {
		return domain.ErrForbidden
	}
	return nil
}

// requireMember passes for any current member.
func requireMember(t *domain.Team, callerID string) error {
	if _, ok := t.RoleOf(callerID); !ok {
		return domain.ErrNotMember
	}
	return nil
}

// CreateTeam creates a team with the caller as Owner. No slot is taken; the id
// is fresh so no concurrent command can target it.
func (s *MembershipService) CreateTeam(ctx context.Context, callerID string, profile domain.Profile) (*domain.Team, error) {
	if callerID == "" {
		return nil, domain.ErrInvalidParticipant
	}
	t, err := domain.NewTeam(uuid.New().String(), callerID, profile)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateTeam(ctx, t); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	ev := &domain.Event{
		ID:        uuid.New().String(),
		TeamID:    t.ID,
		Type:      domain.EventTeamCreated,
		ActorID:   callerID,
		SubjectID: callerID,
		Role:      domain.RoleOwner,
		Version:   t.Version,
		CreatedAt: t.CreatedAt,
	}
	events.EmitAsync(s.emitter, ctx, ev)
	s.auditCommand(ctx, "CreateTeam", t.ID, callerID, ev)
	return t, nil
}

// Describe returns a read-only snapshot of the team. No slot is taken; readers
// see the latest committed version.
func (s *MembershipService) Describe(ctx context.Context, teamID string) (*domain.Team, error) {
	t, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	if t == nil {
		return nil, domain.ErrTeamNotFound
	}
	return t, nil
}

// ListTeams returns all teams, disbanded ones included.
func (s *MembershipService) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	ts, err := s.repo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return ts, nil
}

// ListTeamsByMember returns the teams the user currently belongs to.
func (s *MembershipService) ListTeamsByMember(ctx context.Context, userID string) ([]*domain.Team, error) {
	ts, err := s.repo.ListTeamsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return ts, nil
}

// UpdateProfile replaces the team's display metadata. Owner or Leader only.
func (s *MembershipService) UpdateProfile(ctx context.Context, teamID, callerID string, profile domain.Profile) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "UpdateProfile",
		gate:    requireManager,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.UpdateProfile(profile) },
	})
}

// Invite files a pending invitation from the caller to inviteeID. Any current
// member may invite.
func (s *MembershipService) Invite(ctx context.Context, teamID, callerID, inviteeID, message string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "Invite",
		gate:    requireMember,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.RecordInvitation(callerID, inviteeID, message) },
	})
}

// RevokeInvitation withdraws a pending invitation. Allowed for the inviter and
// for Owner/Leader.
func (s *MembershipService) RevokeInvitation(ctx context.Context, teamID, callerID, inviteeID string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "RevokeInvitation",
		gate: func(t *domain.Team, caller string) error {
			role, member := t.RoleOf(caller)
			if member && role.CanManageMembers() {
				return nil
			}
			if inv, ok := t.Invitations[inviteeID]; ok && inv.InviterID == caller {
				return nil
			}
			if !member {
				return domain.ErrNotMember
			}
			return domain.ErrForbidden
		},
		apply: func(t *domain.Team) (*domain.Event, error) { return t.RevokeInvitation(inviteeID) },
	})
}

// RequestJoin files the caller's pending join request. Callers are
// non-members by definition.
func (s *MembershipService) RequestJoin(ctx context.Context, teamID, callerID, message string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "RequestJoin",
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.RecordJoinRequest(callerID, message) },
	})
}

// ResolveJoinRequest accepts or rejects userID's pending join request.
// Owner or Leader only.
func (s *MembershipService) ResolveJoinRequest(ctx context.Context, teamID, callerID, userID string, accept bool) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "ResolveJoinRequest",
		gate:    requireManager,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.ResolveJoinRequest(userID, accept) },
	})
}

// ResolveInvitation accepts or declines the caller's own pending invitation.
// The caller is the invitee and is not yet a member, so there is no role gate.
func (s *MembershipService) ResolveInvitation(ctx context.Context, teamID, callerID string, accept bool) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "ResolveInvitation",
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.ResolveInvitation(callerID, accept) },
	})
}

// AddMember installs userID with the given role. Owner or Leader only.
func (s *MembershipService) AddMember(ctx context.Context, teamID, callerID, userID string, role domain.Role) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "AddMember",
		gate:    requireManager,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.AddMember(userID, role) },
	})
}

// RemoveMember removes userID's membership. Owner or Leader only.
func (s *MembershipService) RemoveMember(ctx context.Context, teamID, callerID, userID string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "RemoveMember",
		gate:    requireManager,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.RemoveMember(userID) },
	})
}

// ChangeRole sets userID's role. Owner or Leader only.
func (s *MembershipService) ChangeRole(ctx context.Context, teamID, callerID, userID string, role domain.Role) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "ChangeRole",
		gate:    requireManager,
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.ChangeRole(userID, role) },
	})
}

// TransferOwnership makes newOwnerID the Owner and demotes the caller to
// Leader. Any non-Owner caller fails with Forbidden.
func (s *MembershipService) TransferOwnership(ctx context.Context, teamID, callerID, newOwnerID string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "TransferOwnership",
		gate: func(t *domain.Team, caller string) error {
			role, _ := t.RoleOf(caller)
			if !role.CanInitiateTransfer() {
				return domain.ErrForbidden
			}
			return nil
		},
		apply: func(t *domain.Team) (*domain.Event, error) { return t.TransferOwnership(newOwnerID) },
	})
}

// Leave removes the caller's own membership.
func (s *MembershipService) Leave(ctx context.Context, teamID, callerID string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "Leave",
		apply:   func(t *domain.Team) (*domain.Event, error) { return t.Leave(callerID) },
	})
}

// Disband terminally disbands the team. Any non-Owner caller fails with
// Forbidden; a repeat disband fails with TeamDisbanded.
func (s *MembershipService) Disband(ctx context.Context, teamID, callerID string) (*domain.Team, error) {
	return s.mutate(ctx, teamID, callerID, mutation{
		command: "Disband",
		gate: func(t *domain.Team, caller string) error {
			role, _ := t.RoleOf(caller)
			if !role.CanDisband() {
				return domain.ErrForbidden
			}
			return nil
		},
		apply: func(t *domain.Team) (*domain.Event, error) { return t.Disband() },
	})
}
