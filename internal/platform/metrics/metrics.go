// Package metrics registers the service's Prometheus collectors. All
// recording methods are nil-safe so tests can pass a nil *Metrics and skip
// registration entirely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the report pipeline.
type Metrics struct {
	// Submissions by outcome: accepted, duplicate, rejected.
	ReportsSubmitted *prometheus.CounterVec

	// State machine moves by (from, to) pair.
	StateTransitions *prometheus.CounterVec

	// Ledger appends by version kind.
	VersionsAppended *prometheus.CounterVec

	// Bundle generations by mode.
	BundlesGenerated *prometheus.CounterVec

	// Pipeline failures by persisted reason code.
	PipelineFailures *prometheus.CounterVec

	// Bundle assembly latency.
	BundleAssembly prometheus.Histogram

	// HTTP request latency by method, route pattern, and status.
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all pipeline metrics registered on the
// default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		ReportsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labfhir_reports_submitted_total",
			Help: "Total report submissions by outcome",
		}, []string{"outcome"}),

		StateTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labfhir_state_transitions_total",
			Help: "Total report state transitions by from and to state",
		}, []string{"from", "to"}),

		VersionsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labfhir_versions_appended_total",
			Help: "Total ledger versions appended by kind",
		}, []string{"kind"}),

		BundlesGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labfhir_bundles_generated_total",
			Help: "Total bundle artifacts generated by mode",
		}, []string{"mode"}),

		PipelineFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labfhir_pipeline_failures_total",
			Help: "Total pipeline failures by persisted reason code",
		}, []string{"reason"}),

		BundleAssembly: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "labfhir_bundle_assembly_seconds",
			Help:    "Duration of bundle assembly including canonical serialization",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labfhir_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern, and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),
	}
}

// IncReportSubmitted records one submission outcome.
func (m *Metrics) IncReportSubmitted(outcome string) {
	if m != nil {
		m.ReportsSubmitted.WithLabelValues(outcome).Inc()
	}
}

// IncStateTransition records one state machine move.
func (m *Metrics) IncStateTransition(from, to string) {
	if m != nil {
		m.StateTransitions.WithLabelValues(from, to).Inc()
	}
}

// IncVersionAppended records one ledger append.
func (m *Metrics) IncVersionAppended(kind string) {
	if m != nil {
		m.VersionsAppended.WithLabelValues(kind).Inc()
	}
}

// IncBundleGenerated records one artifact generation.
func (m *Metrics) IncBundleGenerated(mode string) {
	if m != nil {
		m.BundlesGenerated.WithLabelValues(mode).Inc()
	}
}

// IncPipelineFailure records one failure by reason code.
func (m *Metrics) IncPipelineFailure(reason string) {
	if m != nil {
		m.PipelineFailures.WithLabelValues(reason).Inc()
	}
}

// ObserveBundleAssembly records one assembly duration.
func (m *Metrics) ObserveBundleAssembly(d time.Duration) {
	if m != nil {
		m.BundleAssembly.Observe(d.Seconds())
	}
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
