package events

import (
	"context"
	"log"
	"time"

	"gamerie/backend/internal/team/domain"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long the server waits after the HTTP listener
// stops before shutting down OTel providers and the Kafka writer, so in-flight
// async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the caller is not
// blocked. Use after a successful commit for fire-and-forget delivery; errors
// are logged.
//
// emitter and event may be nil; EmitAsync returns immediately without starting
// a goroutine. The goroutine uses context.Background() with emitTimeout so
// request cancellation does not abort an in-flight emit.
func EmitAsync(emitter Emitter, ctx context.Context, event *domain.Event) {
	if emitter == nil || event == nil {
		return
	}
	go func() {
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Printf("events: async emit failed: %v", err)
		}
	}()
}
