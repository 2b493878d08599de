package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gamerie/backend/internal/team/domain"
)

// PostgresRepository persists team aggregates as single rows. The governance
// maps (members, join requests, invitations) are JSONB columns so the
// version-guarded UPDATE commits the whole aggregate atomically.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a team repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const teamColumns = `id, profile, owner_id, members, join_requests, invitations, version, disbanded, created_at, updated_at`

// GetTeam returns the team for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// CreateTeam inserts the aggregate. Fails on duplicate id.
func (r *PostgresRepository) CreateTeam(ctx context.Context, t *domain.Team) error {
	profile, members, requests, invitations, err := marshalTeam(t)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, profile, t.OwnerID, members, requests, invitations,
		t.Version, t.Disbanded, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// CompareAndSwap writes the aggregate guarded by the expected version.
// Returns false when zero rows matched, i.e. the stored version moved (or the
// team row vanished) between the caller's load and this write.
func (r *PostgresRepository) CompareAndSwap(ctx context.Context, t *domain.Team, expectedVersion int64) (bool, error) {
	profile, members, requests, invitations, err := marshalTeam(t)
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE teams
		SET profile = $1, owner_id = $2, members = $3, join_requests = $4,
		    invitations = $5, version = $6, disbanded = $7, updated_at = $8
		WHERE id = $9 AND version = $10`,
		profile, t.OwnerID, members, requests, invitations,
		t.Version, t.Disbanded, t.UpdatedAt, t.ID, expectedVersion,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListTeams returns all teams ordered by creation time.
func (r *PostgresRepository) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTeams(rows)
}

// ListTeamsByMember returns teams whose members map contains userID as a key.
func (r *PostgresRepository) ListTeamsByMember(ctx context.Context, userID string) ([]*domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE members ? $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTeams(rows)
}

func marshalTeam(t *domain.Team) (profile, members, requests, invitations []byte, err error) {
	if profile, err = json.Marshal(t.Profile); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal profile: %w", err)
	}
	if members, err = json.Marshal(t.Members); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal members: %w", err)
	}
	if requests, err = json.Marshal(t.JoinRequests); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal join requests: %w", err)
	}
	if invitations, err = json.Marshal(t.Invitations); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal invitations: %w", err)
	}
	return profile, members, requests, invitations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (*domain.Team, error) {
	var t domain.Team
	var profile, members, requests, invitations []byte
	err := row.Scan(&t.ID, &profile, &t.OwnerID, &members, &requests, &invitations,
		&t.Version, &t.Disbanded, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(profile, &t.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal(members, &t.Members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	if err := json.Unmarshal(requests, &t.JoinRequests); err != nil {
		return nil, fmt.Errorf("unmarshal join requests: %w", err)
	}
	if err := json.Unmarshal(invitations, &t.Invitations); err != nil {
		return nil, fmt.Errorf("unmarshal invitations: %w", err)
	}
	return &t, nil
}

func collectTeams(rows *sql.Rows) ([]*domain.Team, error) {
	var out []*domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
