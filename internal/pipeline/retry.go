package pipeline

import (
	"context"
	"fmt"

	"labfhir/internal/audit"
	bundleModels "labfhir/internal/bundle/models"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

// Retry re-enters the pipeline from failed. The caller picks where to
// resume:
//
//   - parsing: the report returns to parsing and waits for a fresh Advance
//     payload, for failures where the extraction itself must be redone
//   - generating_bundle: assembly is re-run immediately against the latest
//     valid version, for failures downstream of a good extraction
//
// Re-entry clears the retained error fields. A retried generation stores
// its artifact as initial: it is the first successful assembly, not a
// regeneration of one.
func (s *Service) Retry(ctx context.Context, reportID id.ReportID, target reportModel.Status) (*reportModel.Report, error) {
	ctx, span := s.startSpan(ctx, "pipeline.Retry", reportID)
	defer span.End()

	if target != reportModel.StatusParsing && target != reportModel.StatusGeneratingBundle {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("retry target must be %q or %q", reportModel.StatusParsing, reportModel.StatusGeneratingBundle))
	}

	release, err := s.lockReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, reportNotFound(err, reportID)
	}
	if report.Status != reportModel.StatusFailed {
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("only failed reports can be retried, report is %s", report.Status))
	}

	now := requestcontext.Now(ctx)
	if err := report.Transition(target, now); err != nil {
		return nil, err
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
	}
	s.noteTransition(ctx, report, reportModel.StatusFailed)
	s.logger.InfoContext(ctx, "report retried",
		"report_id", reportID.String(),
		"target", string(target),
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionReportRetried,
		ReportID:  reportID,
		SubjectID: report.SubjectID,
		Outcome:   string(target),
	})

	if target == reportModel.StatusGeneratingBundle {
		if _, err := s.generateLocked(ctx, report, reportModel.StatusGeneratingBundle, bundleModels.ModeInitial); err != nil {
			return nil, err
		}
	}
	return report, nil
}
