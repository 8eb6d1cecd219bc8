// Package pipeline orchestrates the report lifecycle: submission through the
// dedup gate, payload advancement into the version ledger, reviewer
// corrections, bundle generation, and retry re-entry.
//
// Every mutating operation runs its read-validate-write sequence under the
// report's exclusive lock, and every state write goes through the transition
// table first. State transitions and their dependent writes (version append,
// artifact insert) commit atomically through the TxRunner seam.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"labfhir/internal/audit"
	"labfhir/internal/bundle"
	artifactstore "labfhir/internal/bundle/store/artifact"
	"labfhir/internal/docstore"
	ledgersvc "labfhir/internal/ledger/service"
	"labfhir/internal/pipeline/lock"
	"labfhir/internal/platform/metrics"
	reportModel "labfhir/internal/report/models"
	reportstore "labfhir/internal/report/store/report"
	subjectsvc "labfhir/internal/subject/service"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/platform/sentinel"
)

const tracerName = "labfhir/pipeline"

// systemActor is recorded as the author when no authenticated caller is on
// the context (extraction collaborators, dev deployments without auth).
const systemActor = "system"

// TxRunner runs fn with transactional semantics: every store write inside fn
// commits together or not at all. The SQL implementation opens a transaction
// and threads it through ctx; stores pick it up via the tx-in-context helper.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemoryTxRunner runs fn directly. Memory stores apply writes under their own
// mutexes, and the per-report lock already serializes each report's
// read-validate-write sequence, so single-process deployments need no
// rollback machinery.
type MemoryTxRunner struct{}

func (MemoryTxRunner) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Deps are the pipeline's required collaborators.
type Deps struct {
	Reports   reportstore.Store
	Subjects  *subjectsvc.Service
	Ledger    *ledgersvc.Service
	Artifacts artifactstore.Store
	Documents docstore.Store
	Locker    lock.ReportLocker
	Tx        TxRunner
}

// Service orchestrates the report pipeline.
type Service struct {
	reports   reportstore.Store
	subjects  *subjectsvc.Service
	ledger    *ledgersvc.Service
	artifacts artifactstore.Store
	docs      docstore.Store
	assembler *bundle.Assembler
	locker    lock.ReportLocker
	tx        TxRunner

	audit   *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	verifyParallelism int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAudit attaches the audit publisher. Without it, no events are emitted.
func WithAudit(pub *audit.Publisher) Option {
	return func(s *Service) {
		s.audit = pub
	}
}

// WithMetrics attaches the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAssembler overrides the default bundle assembler, e.g. to inject a
// deployment-specific terminology table.
func WithAssembler(a *bundle.Assembler) Option {
	return func(s *Service) {
		s.assembler = a
	}
}

// WithVerifyParallelism bounds the concurrent re-assemblies in
// VerifyArtifacts.
func WithVerifyParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.verifyParallelism = n
		}
	}
}

// New constructs the pipeline service.
func New(deps Deps, opts ...Option) (*Service, error) {
	if deps.Reports == nil {
		return nil, fmt.Errorf("report store is required")
	}
	if deps.Subjects == nil {
		return nil, fmt.Errorf("subject service is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if deps.Artifacts == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if deps.Documents == nil {
		return nil, fmt.Errorf("document store is required")
	}
	if deps.Locker == nil {
		return nil, fmt.Errorf("report locker is required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}

	s := &Service{
		reports:           deps.Reports,
		subjects:          deps.Subjects,
		ledger:            deps.Ledger,
		artifacts:         deps.Artifacts,
		docs:              deps.Documents,
		locker:            deps.Locker,
		tx:                deps.Tx,
		assembler:         bundle.NewAssembler(),
		logger:            slog.Default(),
		tracer:            otel.Tracer(tracerName),
		verifyParallelism: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetReport loads one report.
func (s *Service) GetReport(ctx context.Context, reportID id.ReportID) (*reportModel.Report, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, reportNotFound(err, reportID)
	}
	return report, nil
}

// ListReportsBySubject returns a subject's reports in submission order. The
// subject must exist; an unknown ID is a not-found error, not an empty list.
func (s *Service) ListReportsBySubject(ctx context.Context, subjectID id.SubjectID) ([]*reportModel.Report, error) {
	if _, err := s.subjects.Get(ctx, subjectID); err != nil {
		return nil, err
	}
	reports, err := s.reports.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reports")
	}
	return reports, nil
}

// ListAuditTrail returns the recorded audit events for one report.
func (s *Service) ListAuditTrail(ctx context.Context, reportID id.ReportID) ([]audit.Event, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.ListByReport(ctx, reportID)
}

// GetDocument returns the original uploaded bytes alongside the report.
// Duplicates resolve through their content hash, which matches the
// canonical upload's stored document.
func (s *Service) GetDocument(ctx context.Context, reportID id.ReportID) (*reportModel.Report, []byte, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.docs.Get(ctx, report.ContentHash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound,
				fmt.Sprintf("document not found for report: %s", reportID))
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return report, data, nil
}

// lockReport acquires the per-report lock, translating acquisition failures
// into coded errors.
func (s *Service) lockReport(ctx context.Context, reportID id.ReportID) (func(), error) {
	release, err := s.locker.Acquire(ctx, reportID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for report lock")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire report lock")
	}
	return release, nil
}

// startSpan opens a pipeline op span tagged with the report ID.
func (s *Service) startSpan(ctx context.Context, op string, reportID id.ReportID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, op,
		trace.WithAttributes(attribute.String("report_id", reportID.String())))
}

// emit publishes an audit event when a publisher is wired.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, event)
}

// noteTransition records a persisted state change in metrics and the audit
// trail. Call after the write succeeded, never before.
func (s *Service) noteTransition(ctx context.Context, report *reportModel.Report, from reportModel.Status) {
	s.metrics.IncStateTransition(string(from), string(report.Status))
	s.logger.InfoContext(ctx, "report state changed",
		"report_id", report.ID.String(),
		"from", string(from),
		"to", string(report.Status),
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionStateChanged,
		ReportID:  report.ID,
		SubjectID: report.SubjectID,
		Outcome:   string(report.Status),
		Detail:    string(from) + " -> " + string(report.Status),
	})
}

func reportNotFound(err error, reportID id.ReportID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("report not found: %s", reportID))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load report")
}

func artifactNotFound(err error, reportID id.ReportID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("report has no bundle artifact: %s", reportID))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load bundle artifact")
}
