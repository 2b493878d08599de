package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"gamerie/backend/internal/security"
)

const bearerPrefix = "bearer "

// Auth returns middleware that validates the Bearer access token from the
// Authorization header and sets the user id in the request context.
// publicPaths is the set of exact paths served without a token (e.g. /healthz).
// A valid token on a public path still sets the user id.
func Auth(verifier *security.Verifier, publicPaths map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			public := publicPaths[r.URL.Path]

			if token == "" {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				unauthorized(w)
				return
			}
			userID, err := verifier.ValidateAccess(token)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid authorization"})
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
