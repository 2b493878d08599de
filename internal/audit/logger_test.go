package audit

import (
	"context"
	"errors"
	"testing"

	"gamerie/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByTeam(ctx context.Context, teamID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string { return "192.168.1.1" }
	logger := NewLogger(repo, ipExtractor)

	logger.LogEvent(context.Background(), "team-1", "user-1", "role_changed", "member", `{"role":"Chief"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.TeamID != "team-1" {
		t.Errorf("team_id = %q, want team-1", entry.TeamID)
	}
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want user-1", entry.UserID)
	}
	if entry.Action != "role_changed" || entry.Resource != "member" {
		t.Errorf("action/resource = %s/%s, want role_changed/member", entry.Action, entry.Resource)
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want 192.168.1.1", entry.IP)
	}
	if entry.ID == "" {
		t.Error("entry should get a generated id")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry should get a timestamp")
	}
}

func TestLogger_LogEvent_NilExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	logger.LogEvent(context.Background(), "team-1", "user-1", "create", "team", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_LogEvent_EmptyTeamUsesSentinel(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	logger.LogEvent(context.Background(), "", "user-1", "create", "team", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].TeamID != SentinelTeamID {
		t.Errorf("team_id = %q, want %q", repo.entries[0].TeamID, SentinelTeamID)
	}
}

func TestLogger_LogEvent_CreateFailureIsSwallowed(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	logger := NewLogger(repo, nil)

	// Must not panic or propagate the error.
	logger.LogEvent(context.Background(), "team-1", "user-1", "create", "team", "")
}

func TestLogger_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)
	// No-op, no panic.
	logger.LogEvent(context.Background(), "team-1", "user-1", "create", "team", "")
}
