package audit

import (
	"context"
	"errors"
	"log/slog"
)

// Sink forwards audit events to an external stream.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher's forward channel into a sink. Delivery is
// best-effort: a failed event is logged and dropped, the store copy already
// exists. Run exits when ctx is done or the inbox is closed.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithWorkerLogger attaches a structured logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

// NewWorker constructs a worker forwarding inbox events to sink.
func NewWorker(sink Sink, inbox <-chan Event, opts ...WorkerOption) *Worker {
	w := &Worker{
		sink:   sink,
		inbox:  inbox,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Publish(ctx, event); err != nil {
				if errors.Is(err, ErrSinkDegraded) {
					continue
				}
				w.logger.WarnContext(ctx, "failed to forward audit event",
					"action", event.Action,
					"report_id", event.ReportID,
					"error", err,
				)
			}
		}
	}
}
