// Package httptransport is the thin HTTP layer over the pipeline, subject,
// and ledger services. Handlers decode, delegate, and encode; business rules
// stay in the services so transport concerns remain isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labfhir/internal/audit"
	bundleModels "labfhir/internal/bundle/models"
	"labfhir/internal/labdata"
	ledgerModels "labfhir/internal/ledger/models"
	"labfhir/internal/pipeline"
	"labfhir/internal/platform/metrics"
	"labfhir/internal/platform/middleware"
	reportModel "labfhir/internal/report/models"
	subjectModels "labfhir/internal/subject/models"
	subjectsvc "labfhir/internal/subject/service"
	"labfhir/internal/transport/http/shared"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
)

// defaultMaxUploadBytes caps multipart report uploads at 25 MiB.
const defaultMaxUploadBytes = 25 << 20

// PipelineService defines the report lifecycle operations the handlers
// delegate to.
type PipelineService interface {
	Submit(ctx context.Context, in pipeline.SubmitInput) (*reportModel.Report, error)
	GetReport(ctx context.Context, reportID id.ReportID) (*reportModel.Report, error)
	ListReportsBySubject(ctx context.Context, subjectID id.SubjectID) ([]*reportModel.Report, error)
	GetDocument(ctx context.Context, reportID id.ReportID) (*reportModel.Report, []byte, error)
	ListAuditTrail(ctx context.Context, reportID id.ReportID) ([]audit.Event, error)
	Advance(ctx context.Context, reportID id.ReportID, payload labdata.Payload) (*reportModel.Report, error)
	Correct(ctx context.Context, reportID id.ReportID, edited labdata.Payload, author string) (*ledgerModels.Version, error)
	GenerateBundle(ctx context.Context, reportID id.ReportID, mode bundleModels.GenerationMode) (*bundleModels.BundleArtifact, error)
	LatestArtifact(ctx context.Context, reportID id.ReportID) (*bundleModels.BundleArtifact, error)
	Retry(ctx context.Context, reportID id.ReportID, target reportModel.Status) (*reportModel.Report, error)
	VerifyArtifacts(ctx context.Context) (*pipeline.VerifyResult, error)
}

// SubjectService defines the subject profile operations.
type SubjectService interface {
	Create(ctx context.Context, in subjectsvc.CreateInput) (*subjectModels.Subject, error)
	Get(ctx context.Context, subjectID id.SubjectID) (*subjectModels.Subject, error)
	List(ctx context.Context) ([]*subjectModels.Subject, error)
}

// LedgerService defines the version ledger reads.
type LedgerService interface {
	List(ctx context.Context, reportID id.ReportID) ([]*ledgerModels.Version, error)
	LatestValid(ctx context.Context, reportID id.ReportID) (*ledgerModels.Version, error)
	Get(ctx context.Context, versionID id.VersionID) (*ledgerModels.Version, error)
	ListEdits(ctx context.Context, versionID id.VersionID) ([]ledgerModels.EditHistoryEntry, error)
}

// HealthCheck probes one dependency for the health endpoint.
type HealthCheck func(ctx context.Context) error

// Handler handles all API endpoints.
type Handler struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	pipeline PipelineService
	subjects SubjectService
	ledger   LedgerService

	// jwtValidator gates /api/v1 when set; nil leaves the API open, the
	// dev and test posture.
	jwtValidator middleware.JWTValidator
	// apiKeys gates the admin routes when set.
	apiKeys middleware.APIKeyVerifier

	healthChecks map[string]HealthCheck

	requestTimeout time.Duration
	maxUploadBytes int64
}

// Deps are the handler's required collaborators.
type Deps struct {
	Pipeline PipelineService
	Subjects SubjectService
	Ledger   LedgerService
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics attaches the Prometheus collectors for latency recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithJWTValidator enables bearer-token auth on the API routes.
func WithJWTValidator(v middleware.JWTValidator) Option {
	return func(h *Handler) {
		h.jwtValidator = v
	}
}

// WithAPIKeyVerifier enables the X-API-Key gate on the admin routes.
func WithAPIKeyVerifier(v middleware.APIKeyVerifier) Option {
	return func(h *Handler) {
		h.apiKeys = v
	}
}

// WithHealthChecks registers named dependency probes reported by /health.
func WithHealthChecks(checks map[string]HealthCheck) Option {
	return func(h *Handler) {
		h.healthChecks = checks
	}
}

// WithRequestTimeout overrides the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// WithMaxUploadBytes overrides the multipart upload cap.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// New creates the API handler.
func New(deps Deps, opts ...Option) *Handler {
	h := &Handler{
		logger:         slog.Default(),
		pipeline:       deps.Pipeline,
		subjects:       deps.Subjects,
		ledger:         deps.Ledger,
		requestTimeout: 30 * time.Second,
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires all endpoints. Health and metrics sit outside the auth gate;
// everything under /api/v1 shares the full middleware chain.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(h.requestTimeout))
	r.Use(middleware.LatencyMiddleware(h.metrics))

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		if h.jwtValidator != nil {
			api.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		}

		api.Post("/subjects", h.handleCreateSubject)
		api.Get("/subjects", h.handleListSubjects)
		api.Get("/subjects/{subjectID}", h.handleGetSubject)

		api.Post("/reports", h.handleSubmitReport)
		api.Get("/reports", h.handleListReports)
		api.Get("/reports/{reportID}", h.handleGetReport)
		api.Get("/reports/{reportID}/document", h.handleDownloadDocument)
		api.Get("/reports/{reportID}/events", h.handleListEvents)
		api.Post("/reports/{reportID}/advance", h.handleAdvanceReport)
		api.Post("/reports/{reportID}/retry", h.handleRetryReport)

		api.Post("/reports/{reportID}/corrections", h.handleCorrectReport)
		api.Get("/reports/{reportID}/versions", h.handleListVersions)
		api.Get("/reports/{reportID}/versions/latest-valid", h.handleLatestValidVersion)
		api.Get("/versions/{versionID}/edits", h.handleListEdits)

		api.Post("/reports/{reportID}/bundle", h.handleGenerateBundle)
		api.Get("/reports/{reportID}/bundle", h.handleGetBundle)

		api.Route("/admin", func(admin chi.Router) {
			if h.apiKeys != nil {
				admin.Use(middleware.RequireAPIKey(h.apiKeys, h.logger))
			}
			admin.Post("/verify-artifacts", h.handleVerifyArtifacts)
		})
	})

	return r
}

// healthCheckTimeout bounds each dependency probe so a hung backend cannot
// stall the liveness endpoint.
const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth reports liveness plus the state of every registered
// dependency probe. A failing probe degrades the response to 503.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	if len(h.healthChecks) > 0 {
		resp.Checks = make(map[string]string, len(h.healthChecks))
	}
	status := http.StatusOK
	for name, probe := range h.healthChecks {
		if err := probe(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	shared.WriteJSON(w, status, resp)
}

// logError records a failed service call at a level matching its class:
// client-caused failures are warnings, internal ones are errors.
func (h *Handler) logError(ctx context.Context, msg string, err error) {
	args := []any{
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
