package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey   = contextKey{"user_id"}
	clientIPKey = contextKey{"client_ip"}
)

// WithUserID returns a context with the authenticated user id set. Handlers
// read it via GetUserID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// WithClientIP returns a context with the client IP set.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP from context, or "unknown" if unset.
func GetClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
