// Package lock serializes mutating pipeline operations per report. Every
// read-validate-write sequence in the pipeline runs under the report's
// exclusive lock; operations on different reports proceed in parallel
// without coordination.
package lock

import (
	"context"

	id "labfhir/pkg/domain"
)

// ReportLocker hands out per-report exclusive locks. Acquire blocks until
// the lock is held or ctx is done; the returned release function must be
// called exactly once.
type ReportLocker interface {
	Acquire(ctx context.Context, reportID id.ReportID) (release func(), err error)
}
