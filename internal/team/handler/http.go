// Package handler exposes the governance engine as an HTTP/JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gamerie/backend/internal/server/middleware"
	"gamerie/backend/internal/team/domain"
	"gamerie/backend/internal/team/service"
)

// Presence lists the online subset of the given user ids. Optional; the
// describe projection renders without it.
type Presence interface {
	OnlineAmong(userIDs []string) []string
}

// Handler serves the /v1/teams surface.
type Handler struct {
	svc      *service.MembershipService
	presence Presence
}

// NewHandler returns a Handler. presence may be nil.
func NewHandler(svc *service.MembershipService, presence Presence) *Handler {
	return &Handler{svc: svc, presence: presence}
}

// Register mounts all team routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/v1/teams", h.createTeam).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams", h.listTeams).Methods(http.MethodGet)
	r.HandleFunc("/v1/teams/{teamID}", h.describe).Methods(http.MethodGet)
	r.HandleFunc("/v1/teams/{teamID}", h.updateProfile).Methods(http.MethodPatch)
	r.HandleFunc("/v1/teams/{teamID}", h.disband).Methods(http.MethodDelete)
	r.HandleFunc("/v1/teams/{teamID}/join-requests", h.requestJoin).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/join-requests/{userID}/resolve", h.resolveJoinRequest).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/invitations", h.invite).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/invitations/resolve", h.resolveInvitation).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/invitations/{inviteeID}", h.revokeInvitation).Methods(http.MethodDelete)
	r.HandleFunc("/v1/teams/{teamID}/members", h.addMember).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/members/{userID}", h.removeMember).Methods(http.MethodDelete)
	r.HandleFunc("/v1/teams/{teamID}/members/{userID}/role", h.changeRole).Methods(http.MethodPut)
	r.HandleFunc("/v1/teams/{teamID}/transfer", h.transferOwnership).Methods(http.MethodPost)
	r.HandleFunc("/v1/teams/{teamID}/leave", h.leave).Methods(http.MethodPost)
}

type profileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
	Level       string `json:"level"`
	TeamMessage string `json:"teamMessage"`
}

func (p profileRequest) profile() domain.Profile {
	return domain.Profile{
		Name:        p.Name,
		Description: p.Description,
		Logo:        p.Logo,
		Country:     p.Country,
		Region:      p.Region,
		Timezone:    p.Timezone,
		Level:       p.Level,
		TeamMessage: p.TeamMessage,
	}
}

// teamView is the wire shape of a team, optionally extended with the online
// member ids from the presence store.
type teamView struct {
	*domain.Team
	OnlineMemberIDs []string `json:"onlineMemberIds,omitempty"`
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.CreateTeam(r.Context(), callerID, req.profile())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, teamView{Team: team})
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	var (
		teams []*domain.Team
		err   error
	)
	if member := r.URL.Query().Get("member"); member != "" {
		teams, err = h.svc.ListTeamsByMember(r.Context(), member)
	} else {
		teams, err = h.svc.ListTeams(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}
	views := make([]teamView, 0, len(teams))
	for _, t := range teams {
		views = append(views, teamView{Team: t})
	}
	respondJSON(w, http.StatusOK, map[string]any{"teams": views})
}

func (h *Handler) describe(w http.ResponseWriter, r *http.Request) {
	team, err := h.svc.Describe(r.Context(), mux.Vars(r)["teamID"])
	if err != nil {
		respondError(w, err)
		return
	}
	view := teamView{Team: team}
	if h.presence != nil {
		ids := make([]string, 0, len(team.Members))
		for id := range team.Members {
			ids = append(ids, id)
		}
		view.OnlineMemberIDs = h.presence.OnlineAmong(ids)
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.UpdateProfile(r.Context(), mux.Vars(r)["teamID"], callerID, req.profile())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) requestJoin(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.RequestJoin(r.Context(), mux.Vars(r)["teamID"], callerID, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) resolveJoinRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	vars := mux.Vars(r)
	team, err := h.svc.ResolveJoinRequest(r.Context(), vars["teamID"], callerID, vars["userID"], req.Accept)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) invite(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		InviteeID string `json:"inviteeId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.Invite(r.Context(), mux.Vars(r)["teamID"], callerID, req.InviteeID, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) resolveInvitation(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.ResolveInvitation(r.Context(), mux.Vars(r)["teamID"], callerID, req.Accept)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) revokeInvitation(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	vars := mux.Vars(r)
	team, err := h.svc.RevokeInvitation(r.Context(), vars["teamID"], callerID, vars["inviteeID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	team, err := h.svc.AddMember(r.Context(), mux.Vars(r)["teamID"], callerID, req.UserID, role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	vars := mux.Vars(r)
	team, err := h.svc.RemoveMember(r.Context(), vars["teamID"], callerID, vars["userID"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	vars := mux.Vars(r)
	team, err := h.svc.ChangeRole(r.Context(), vars["teamID"], callerID, vars["userID"], role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) transferOwnership(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	var req struct {
		NewOwnerID string `json:"newOwnerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errBadBody)
		return
	}
	team, err := h.svc.TransferOwnership(r.Context(), mux.Vars(r)["teamID"], callerID, req.NewOwnerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	team, err := h.svc.Leave(r.Context(), mux.Vars(r)["teamID"], callerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

func (h *Handler) disband(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, errUnauthenticated)
		return
	}
	team, err := h.svc.Disband(r.Context(), mux.Vars(r)["teamID"], callerID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teamView{Team: team})
}

var (
	errUnauthenticated = errors.New("authentication required")
	errBadBody         = errors.New("invalid request body")
)

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, err error) {
	status, retryable := statusFor(err)
	respondJSON(w, status, errorBody{Error: err.Error(), Retryable: retryable})
}

// statusFor maps governance failures to HTTP status codes. Only
// ConcurrentModification and Timeout are retryable.
func statusFor(err error) (status int, retryable bool) {
	switch {
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, false
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, false
	case errors.Is(err, domain.ErrTeamNotFound),
		errors.Is(err, domain.ErrNotMember):
		return http.StatusNotFound, false
	case errors.Is(err, domain.ErrConcurrentModification):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrDuplicatePendingRequest),
		errors.Is(err, domain.ErrDuplicatePendingInvitation),
		errors.Is(err, domain.ErrNoPendingRequest),
		errors.Is(err, domain.ErrNoPendingInvitation),
		errors.Is(err, domain.ErrTeamDisbanded),
		errors.Is(err, domain.ErrCannotRemoveOwner),
		errors.Is(err, domain.ErrOwnerCannotLeave):
		return http.StatusConflict, false
	case errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidParticipant),
		errors.Is(err, domain.ErrInvalidProfile),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest, false
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, true
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, false
	default:
		return http.StatusInternalServerError, false
	}
}
