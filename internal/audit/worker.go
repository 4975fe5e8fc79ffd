package audit

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Worker drains the publisher inbox, appends each event to the store, and
// forwards it to the broker sink when one is configured. Store failures are
// logged and skipped so one bad event never stalls the drain.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.handle(ctx, event)
		}
	}
}

func (w *Worker) handle(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.log(ctx, "failed to append audit event", event, err)
	}
	if w.sink == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		w.log(ctx, "failed to encode audit event", event, err)
		return
	}
	if err := w.sink.Publish(ctx, event.UserID.String(), payload); err != nil {
		w.log(ctx, "failed to publish audit event", event, err)
	}
}

func (w *Worker) log(ctx context.Context, msg string, event Event, err error) {
	if w.logger == nil {
		return
	}
	w.logger.ErrorContext(ctx, msg,
		"action", string(event.Action),
		"user_id", event.UserID.String(),
		"error", err,
	)
}
