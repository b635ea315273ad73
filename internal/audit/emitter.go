package audit

import (
	"context"
	"errors"
	"log/slog"

	"landshare/pkg/domain"
	"landshare/pkg/platform/middleware/metadata"
	"landshare/pkg/requestcontext"
)

// ErrBufferFull signals a dropped event on a saturated publisher.
var ErrBufferFull = errors.New("audit buffer full")

// Emitter builds events from request context and hands them to a publisher.
// Services embed one; a nil-publisher emitter only logs, so units under test
// need no audit wiring.
type Emitter struct {
	logger    *slog.Logger
	publisher Publisher
}

func NewEmitter(logger *slog.Logger, publisher Publisher) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{logger: logger, publisher: publisher}
}

// Emit records an audit event attributed to the context's caller. Publishing
// failures are logged, never surfaced: a full audit buffer must not fail a
// settlement operation that already committed.
func (e *Emitter) Emit(ctx context.Context, action string, details map[string]any) {
	e.EmitAs(ctx, requestcontext.Caller(ctx), action, details)
}

// EmitAs records an audit event with an explicit actor, for paths where the
// acting address is not the context caller (e.g. system bootstrap).
func (e *Emitter) EmitAs(ctx context.Context, actor domain.Address, action string, details map[string]any) {
	event := Event{
		ID:         NewEventID(),
		Action:     action,
		Actor:      actor,
		RequestID:  requestcontext.RequestID(ctx),
		ClientIP:   requestcontext.ClientIP(ctx),
		Device:     metadata.DeviceDisplayName(requestcontext.UserAgent(ctx)),
		Details:    details,
		OccurredAt: requestcontext.Now(ctx),
	}

	e.logger.InfoContext(ctx, "audit",
		"action", action,
		"actor", actor,
		"request_id", event.RequestID,
	)

	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "audit event dropped",
			"action", action,
			"error", err,
		)
	}
}
