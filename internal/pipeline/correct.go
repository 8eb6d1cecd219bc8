package pipeline

import (
	"context"
	"fmt"

	"labfhir/internal/audit"
	"labfhir/internal/labdata"
	ledgerModels "labfhir/internal/ledger/models"
	ledgersvc "labfhir/internal/ledger/service"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

// Correct appends a reviewer-corrected version.
//
// Corrections are accepted from review_pending, editing, and completed.
// The edited payload is validated before any state changes: a malformed
// correction is rejected outright and leaves the report exactly where it
// was, since failing a completed report over a typo in an attempted edit
// would destroy good state.
//
// A valid correction routes the report through editing, appends the next
// version as corrected, records the field-level diff against the previous
// latest valid version, and lands on review_pending. A correction on a
// completed report therefore pulls it out of completed; the bundle must be
// regenerated before the report is completed again.
func (s *Service) Correct(ctx context.Context, reportID id.ReportID, edited labdata.Payload, author string) (*ledgerModels.Version, error) {
	ctx, span := s.startSpan(ctx, "pipeline.Correct", reportID)
	defer span.End()

	if author == "" {
		author = requestcontext.Actor(ctx)
	}
	if author == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "correction author is required")
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

	now := requestcontext.Now(ctx)
	edited.Normalize()
	if issues := edited.Validate(now); len(issues) > 0 {
		return nil, labdata.ValidationError(issues)
	}

	previous, err := s.ledger.LatestValid(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if report.Status != reportModel.StatusEditing {
		from := report.Status
		if err := report.Transition(reportModel.StatusEditing, now); err != nil {
			return nil, err
		}
		if err := s.reports.Update(ctx, report); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
		}
		s.noteTransition(ctx, report, from)
	}

	changes := labdata.Diff(previous.Payload, edited)

	var version *ledgerModels.Version
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.ledger.Append(txCtx, ledgersvc.AppendInput{
			ReportID:         reportID,
			Payload:          edited,
			Kind:             ledgerModels.KindCorrected,
			ValidationStatus: ledgerModels.ValidationValid,
			CreatedBy:        author,
		})
		if err != nil {
			return err
		}
		version = v
		if _, err := s.ledger.RecordEdits(txCtx, v.ID, changes, author); err != nil {
			return err
		}
		if err := report.Transition(reportModel.StatusReviewPending, now); err != nil {
			return err
		}
		if err := s.reports.Update(txCtx, report); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVersionAppended(string(ledgerModels.KindCorrected))
	s.noteTransition(ctx, report, reportModel.StatusEditing)
	s.logger.InfoContext(ctx, "correction appended",
		"report_id", reportID.String(),
		"version", version.Number,
		"changed_fields", len(changes),
		"author", author,
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionVersionCorrected,
		ReportID:  reportID,
		SubjectID: report.SubjectID,
		Actor:     author,
		Outcome:   string(ledgerModels.ValidationValid),
		Detail:    fmt.Sprintf("version %d (%d field changes)", version.Number, len(changes)),
	})
	return version, nil
}
