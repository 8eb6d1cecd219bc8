package audit

import (
	"context"
	"log/slog"

	id "labfhir/pkg/domain"
	"labfhir/pkg/requestcontext"
)

// Store is the persistence boundary for audit events. Implementations live
// under store/event; the interface sits here so stores can depend on the
// Event type without a cycle.
type Store interface {
	// Append records one event. Duplicate event IDs are ignored so replays
	// stay idempotent.
	Append(ctx context.Context, event Event) error

	// ListByReport returns all events for a report, oldest first.
	ListByReport(ctx context.Context, reportID id.ReportID) ([]Event, error)

	// ListRecent returns up to limit events across all reports, newest first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher captures structured audit events. Persistence is synchronous;
// the optional forward channel feeds the Kafka worker without blocking the
// caller. Emit never returns an error: a pipeline operation must not fail
// because its audit trail could not be written.
type Publisher struct {
	store   Store
	forward chan<- Event
	logger  *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithForward mirrors every emitted event onto ch. Sends are non-blocking;
// when ch is full the event is dropped from the mirror, never from the store.
func WithForward(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.forward = ch
	}
}

// NewPublisher constructs a publisher backed by store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit enriches the event from the request context and records it. Missing
// fields are filled in; fields the caller set are left alone.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID.IsNil() {
		event.ID = id.NewEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Actor(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Client == "" {
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			event.Client = DescribeClient(ua)
		}
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to record audit event",
			"action", event.Action,
			"report_id", event.ReportID,
			"error", err,
		)
	}

	if p.forward == nil {
		return
	}
	select {
	case p.forward <- event:
	default:
		p.logger.WarnContext(ctx, "audit forward buffer full, dropping event",
			"action", event.Action,
			"report_id", event.ReportID,
		)
	}
}

// ListByReport returns the recorded trail for one report, oldest first.
func (p *Publisher) ListByReport(ctx context.Context, reportID id.ReportID) ([]Event, error) {
	return p.store.ListByReport(ctx, reportID)
}
