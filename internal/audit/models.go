// Package audit records the pipeline's append-only event trail. Every state
// transition, version append, and bundle generation leaves an event carrying
// who did it and from where. Emission is fire-and-forget: audit failures are
// logged and counted, never surfaced to the operation that emitted them.
package audit

import (
	"time"

	id "labfhir/pkg/domain"
)

// Action names what happened. The report lifecycle owns the namespace.
type Action string

const (
	ActionReportSubmitted   Action = "report.submitted"
	ActionDuplicateDetected Action = "report.duplicate_detected"
	ActionStateChanged      Action = "report.state_changed"
	ActionReportRetried     Action = "report.retried"
	ActionReportFailed      Action = "report.failed"
	ActionVersionAppended   Action = "version.appended"
	ActionVersionCorrected  Action = "version.corrected"
	ActionBundleGenerated   Action = "bundle.generated"
)

// Event is emitted from pipeline logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        id.EventID
	Timestamp time.Time
	Action    Action
	ReportID  id.ReportID
	SubjectID id.SubjectID
	// Actor is the authenticated caller, "" for unauthenticated deployments.
	Actor string
	// Outcome summarizes the result: a status name, a generation mode, a
	// retry target. Free-form but short.
	Outcome string
	// Detail carries event-specific context: error codes, "from -> to"
	// transitions, version numbers.
	Detail    string
	RequestID string
	ClientIP  string
	// Client is the human-readable client description parsed from the
	// User-Agent header, e.g. "Chrome on macOS".
	Client string
}
