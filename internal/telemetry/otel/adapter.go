package otel

import (
	"context"
	"encoding/json"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"gamerie/backend/internal/events"
	"gamerie/backend/internal/team/domain"
)

// logEmitter is the minimal logger surface needed by the event emitter;
// satisfied by otellog.Logger and by test capture fakes.
type logEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an events.Emitter that sends governance events as
// OTel log records via the given LoggerProvider. If provider is nil, returns a
// no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) events.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("gamerie.teams")}
}

// NewEventEmitterWithLogger returns an emitter over an explicit logger. Used
// by tests to capture records.
func NewEventEmitterWithLogger(logger logEmitter) events.Emitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Event) error { return nil }

type otelEmitter struct {
	logger logEmitter
}

// Emit converts the governance event to an OTel log record and emits it. Best-effort.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	} else {
		rec.SetTimestamp(time.Now().UTC())
	}
	if body, err := json.Marshal(event); err == nil {
		rec.SetBody(otellog.BytesValue(body))
	}
	if event.TeamID != "" {
		rec.AddAttributes(otellog.String("team_id", event.TeamID))
	}
	if event.ActorID != "" {
		rec.AddAttributes(otellog.String("actor_id", event.ActorID))
	}
	if event.SubjectID != "" {
		rec.AddAttributes(otellog.String("subject_id", event.SubjectID))
	}
	if event.Type != "" {
		rec.AddAttributes(otellog.String("event_type", string(event.Type)))
	}
	if event.Role != "" {
		rec.AddAttributes(otellog.String("role", string(event.Role)))
	}
	rec.AddAttributes(otellog.Int64("version", event.Version))
	e.logger.Emit(ctx, rec)
	return nil
}
