package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink is an optional broker destination for audit events. The kafka
// publisher satisfies it.
type Sink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

const defaultInboxSize = 256

// Publisher accepts events from request handlers and hands them to the
// worker via a bounded inbox. Emission never blocks a request: when the
// inbox is full the event is dropped and logged.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, defaultInboxSize),
		logger: logger,
	}
}

// Emit records an event. A zero timestamp is stamped here so callers only
// describe what happened.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", string(event.Action),
				"user_id", event.UserID.String(),
			)
		}
	}
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
