package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamerie/backend/internal/security"
)

func authChain(t *testing.T, publicPaths map[string]bool) (http.Handler, *string) {
	t.Helper()
	verifier, err := security.NewTestVerifier()
	if err != nil {
		t.Fatalf("NewTestVerifier: %v", err)
	}
	var seenUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(verifier, publicPaths)(inner), &seenUser
}

func TestAuth_ValidToken(t *testing.T) {
	h, seenUser := authChain(t, nil)
	token, err := security.SignTestAccessToken("u1", time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *seenUser != "u1" {
		t.Errorf("user id in context = %q, want u1", *seenUser)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	h, _ := authChain(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	h, _ := authChain(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/teams", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuth_PublicPath(t *testing.T) {
	h, seenUser := authChain(t, map[string]bool{"/healthz": true})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if *seenUser != "" {
		t.Errorf("user id = %q, want empty on anonymous public request", *seenUser)
	}
}

func TestAuth_PublicPathWithValidTokenSetsUser(t *testing.T) {
	h, seenUser := authChain(t, map[string]bool{"/healthz": true})
	token, err := security.SignTestAccessToken("u2", time.Minute)
	if err != nil {
		t.Fatalf("SignTestAccessToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if *seenUser != "u2" {
		t.Errorf("user id = %q, want u2", *seenUser)
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := extractBearer(req); got != tt.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
