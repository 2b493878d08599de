// Package events carries committed governance events to the notification
// pipeline. Emission is best-effort: a sink failure never rolls back a
// committed governance change.
package events

import (
	"context"

	"gamerie/backend/internal/team/domain"
)

// Emitter publishes governance events (e.g. to Kafka). Callers use it
// best-effort: log and ignore errors.
type Emitter interface {
	Emit(ctx context.Context, event *domain.Event) error
}
