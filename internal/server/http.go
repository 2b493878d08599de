// Package server builds the HTTP router and middleware chain for the
// governance API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	audithandler "gamerie/backend/internal/audit/handler"
	"gamerie/backend/internal/presence"
	"gamerie/backend/internal/security"
	"gamerie/backend/internal/server/middleware"
	teamhandler "gamerie/backend/internal/team/handler"
	teamservice "gamerie/backend/internal/team/service"
)

// Pinger is the readiness dependency for /healthz (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds the dependencies the router wires together.
type Deps struct {
	// Teams is the governance service. Required.
	Teams *teamservice.MembershipService
	// Verifier validates Bearer access tokens. Required.
	Verifier *security.Verifier
	// Presence is the heartbeat store. If nil, the heartbeat endpoint returns
	// 503 and describe responses carry no online ids.
	Presence *presence.Store
	// Pinger is used by /healthz readiness. If nil, the DB ping is skipped.
	Pinger Pinger
	// Audit serves the per-team audit trail. If nil, the audit routes are not
	// mounted.
	Audit *audithandler.Handler
}

// publicPaths are served without a Bearer token.
var publicPaths = map[string]bool{
	"/healthz": true,
}

// New builds the router: recovery and request logging on the outside, then
// client IP resolution and token auth, then the team, presence, and health
// endpoints.
func New(deps Deps) http.Handler {
	r := mux.NewRouter()

	var pres teamhandler.Presence
	if deps.Presence != nil {
		pres = deps.Presence
	}
	teamhandler.NewHandler(deps.Teams, pres).Register(r)
	if deps.Audit != nil {
		deps.Audit.Register(r)
	}

	r.HandleFunc("/v1/presence/heartbeat", heartbeat(deps.Presence)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", healthz(deps.Pinger)).Methods(http.MethodGet)

	var h http.Handler = r
	h = middleware.Auth(deps.Verifier, publicPaths)(h)
	h = middleware.ClientIP(h)
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	h = handlers.RecoveryHandler()(h)
	return h
}

// heartbeat records the authenticated caller as online.
func heartbeat(store *presence.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "presence disabled"})
			return
		}
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		store.Heartbeat(userID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// healthz reports liveness, and readiness of the database when a pinger is
// configured.
func healthz(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				status = "db unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		writeJSON(w, code, map[string]string{"status": status})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
