package repository

import (
	"context"

	"gamerie/backend/internal/team/domain"
)

// Repository defines persistence for team aggregates. The engine assumes no
// multi-team transactions; CompareAndSwap on a single team row is the sole
// mutation commit point.
type Repository interface {
	// GetTeam returns the team for id, or nil if not found. Error only on
	// storage failures, not for missing rows.
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	// CreateTeam persists a freshly created aggregate. The team must have ID set.
	CreateTeam(ctx context.Context, t *domain.Team) error
	// CompareAndSwap writes the aggregate only if the stored version still
	// equals expectedVersion. Returns false (and no error) when the version
	// moved; the caller surfaces that as a concurrent-modification failure.
	CompareAndSwap(ctx context.Context, t *domain.Team, expectedVersion int64) (bool, error)
	// ListTeams returns all teams, disbanded ones included.
	ListTeams(ctx context.Context) ([]*domain.Team, error)
	// ListTeamsByMember returns the teams the user is currently a member of.
	ListTeamsByMember(ctx context.Context, userID string) ([]*domain.Team, error)
}
