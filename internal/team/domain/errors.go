package domain

import "errors"

// Sentinel errors for governance commands. Handlers map them to HTTP status
// codes; none of them is retryable except ErrConcurrentModification and
// ErrTimeout, which callers recover from by reloading and reissuing.
var (
	// ErrAlreadyMember: the user already holds a membership in the team.
	ErrAlreadyMember = errors.New("user is already a team member")
	// ErrNotMember: the user (caller or target) has no membership in the team.
	ErrNotMember = errors.New("user is not a team member")
	// ErrInvalidRole: the role is unknown, or is Owner outside of creation/transfer.
	ErrInvalidRole = errors.New("invalid role")
	// ErrCannotRemoveOwner: RemoveMember targeted the Owner; transfer or disband first.
	ErrCannotRemoveOwner = errors.New("cannot remove the team owner")
	// ErrOwnerCannotLeave: the Owner must transfer ownership or disband instead.
	ErrOwnerCannotLeave = errors.New("owner cannot leave the team")
	// ErrDuplicatePendingRequest: a pending join request already exists for the user.
	ErrDuplicatePendingRequest = errors.New("a pending join request already exists")
	// ErrDuplicatePendingInvitation: a pending invitation already exists for the invitee.
	ErrDuplicatePendingInvitation = errors.New("a pending invitation already exists")
	// ErrNoPendingRequest: no pending join request to resolve for the user.
	ErrNoPendingRequest = errors.New("no pending join request for user")
	// ErrNoPendingInvitation: no pending invitation to resolve for the invitee.
	ErrNoPendingInvitation = errors.New("no pending invitation for user")
	// ErrTeamDisbanded: the team is disbanded; no further commands are accepted.
	ErrTeamDisbanded = errors.New("team is disbanded")
	// ErrInvalidParticipant: self-invitation or an otherwise impossible participant.
	ErrInvalidParticipant = errors.New("invalid participant")
	// ErrInvalidProfile: the team profile failed validation (e.g. missing name).
	ErrInvalidProfile = errors.New("invalid team profile")

	// ErrForbidden: the caller's role does not permit the command.
	ErrForbidden = errors.New("caller is not permitted to perform this action")
	// ErrTeamNotFound: no team with the given id.
	ErrTeamNotFound = errors.New("team not found")
	// ErrConcurrentModification: the stored version moved between load and commit.
	// The caller retries with a fresh load; the service never retries on its own.
	ErrConcurrentModification = errors.New("team was modified concurrently")
	// ErrTimeout: the command's deadline expired while waiting for the team slot.
	ErrTimeout = errors.New("timed out waiting for team access")
	// ErrStorageUnavailable: the team store failed; the command had no effect.
	ErrStorageUnavailable = errors.New("team storage unavailable")
)
