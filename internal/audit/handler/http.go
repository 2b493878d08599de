// Package handler exposes the audit trail as an HTTP/JSON API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	auditrepo "gamerie/backend/internal/audit/repository"
	"gamerie/backend/internal/server/middleware"
	teamdomain "gamerie/backend/internal/team/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// TeamDirectory loads team snapshots for permission checks. Satisfied by the
// membership service.
type TeamDirectory interface {
	Describe(ctx context.Context, teamID string) (*teamdomain.Team, error)
}

// Handler serves the audit trail for a team. Reading the trail requires a
// managing role (Owner or Leader) in that team.
type Handler struct {
	repo  auditrepo.Repository
	teams TeamDirectory
}

// NewHandler returns an audit trail handler backed by repo, gated by team
// membership looked up through teams.
func NewHandler(repo auditrepo.Repository, teams TeamDirectory) *Handler {
	return &Handler{repo: repo, teams: teams}
}

// Register mounts the audit routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/teams/{teamID}/audit-logs", h.listByTeam).Methods(http.MethodGet)
}

// auditLogView is the wire shape of one audit entry.
type auditLogView struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"teamId"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) listByTeam(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	teamID := mux.Vars(r)["teamID"]

	team, err := h.teams.Describe(r.Context(), teamID)
	if err != nil {
		switch {
		case errors.Is(err, teamdomain.ErrTeamNotFound):
			writeError(w, http.StatusNotFound, teamdomain.ErrTeamNotFound.Error())
		case errors.Is(err, teamdomain.ErrStorageUnavailable):
			writeError(w, http.StatusServiceUnavailable, teamdomain.ErrStorageUnavailable.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	role, member := team.RoleOf(callerID)
	if !member {
		// Same shape as the team surface: outsiders cannot tell a hidden
		// resource from a missing one.
		writeError(w, http.StatusNotFound, teamdomain.ErrNotMember.Error())
		return
	}
	if !role.CanManageMembers() {
		writeError(w, http.StatusForbidden, teamdomain.ErrForbidden.Error())
		return
	}

	limit, offset := pagination(r)
	logs, err := h.repo.ListByTeam(r.Context(), teamID, limit, offset)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "audit storage unavailable")
		return
	}
	views := make([]auditLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, auditLogView{
			ID:        l.ID,
			TeamID:    l.TeamID,
			UserID:    l.UserID,
			Action:    l.Action,
			Resource:  l.Resource,
			IP:        l.IP,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"auditLogs": views})
}

// pagination reads limit/offset query params with sane bounds.
func pagination(r *http.Request) (limit, offset int32) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 32); err == nil && n > 0 {
			limit = int32(n)
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 32); err == nil && n >= 0 {
			offset = int32(n)
		}
	}
	return limit, offset
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
