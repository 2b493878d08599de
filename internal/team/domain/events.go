package domain

import "time"

// EventType identifies a governance event for the notification pipeline.
type EventType string

const (
	EventTeamCreated          EventType = "team_created"
	EventTeamProfileUpdated   EventType = "team_profile_updated"
	EventMemberAdded          EventType = "member_added"
	EventMemberRemoved        EventType = "member_removed"
	EventMemberLeft           EventType = "member_left"
	EventRoleChanged          EventType = "role_changed"
	EventJoinRequested        EventType = "join_requested"
	EventJoinRequestAccepted  EventType = "join_request_accepted"
	EventJoinRequestRejected  EventType = "join_request_rejected"
	EventInvitationSent       EventType = "invitation_sent"
	EventInvitationAccepted   EventType = "invitation_accepted"
	EventInvitationDeclined   EventType = "invitation_declined"
	EventInvitationRevoked    EventType = "invitation_revoked"
	EventOwnershipTransferred EventType = "ownership_transferred"
	EventTeamDisbanded        EventType = "team_disbanded"
)

// Event is a committed governance change. Emitted to the event sink
// best-effort after the aggregate write succeeds; downstream consumers
// (notification fan-out, UI invalidation) assume at-least-once delivery.
type Event struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	Type      EventType `json:"eventType"`
	ActorID   string    `json:"actorId,omitempty"`
	SubjectID string    `json:"subjectId,omitempty"`
	Role      Role      `json:"role,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}
