package pipeline

import (
	"context"
	"fmt"
	"strings"

	"labfhir/internal/audit"
	"labfhir/internal/labdata"
	ledgerModels "labfhir/internal/ledger/models"
	ledgersvc "labfhir/internal/ledger/service"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

// Advance ingests the extracted payload for a report.
//
// The report enters parsing, the payload is normalized and validated, and a
// new ledger version records the outcome. A valid payload moves the report to
// review_pending. An invalid payload still appends its version, frozen
// invalid with the issue list, then the report fails with processing_error
// and the validation error is returned; the appended version preserves what
// the extractor produced.
//
// Advance also accepts a report already in parsing: that is the re-entry
// point after Retry, and the recovery path when an earlier run persisted the
// parsing state but stopped before appending.
func (s *Service) Advance(ctx context.Context, reportID id.ReportID, payload labdata.Payload) (*reportModel.Report, error) {
	ctx, span := s.startSpan(ctx, "pipeline.Advance", reportID)
	defer span.End()

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
	if report.Status != reportModel.StatusParsing {
		from := report.Status
		if err := report.Transition(reportModel.StatusParsing, now); err != nil {
			return nil, err
		}
		if err := s.reports.Update(ctx, report); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
		}
		s.noteTransition(ctx, report, from)
	}

	author := requestcontext.Actor(ctx)
	if author == "" {
		author = systemActor
	}

	payload.Normalize()
	if issues := payload.Validate(now); len(issues) > 0 {
		return nil, s.failParsing(ctx, report, payload, issues, author)
	}

	var version *ledgerModels.Version
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.ledger.Append(txCtx, ledgersvc.AppendInput{
			ReportID:         reportID,
			Payload:          payload,
			Kind:             ledgerModels.KindOriginal,
			ValidationStatus: ledgerModels.ValidationValid,
			CreatedBy:        author,
		})
		if err != nil {
			return err
		}
		version = v
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

	s.metrics.IncVersionAppended(string(ledgerModels.KindOriginal))
	s.noteTransition(ctx, report, reportModel.StatusParsing)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionVersionAppended,
		ReportID:  reportID,
		SubjectID: report.SubjectID,
		Outcome:   string(ledgerModels.ValidationValid),
		Detail:    fmt.Sprintf("version %d (%s)", version.Number, version.Kind),
	})
	return report, nil
}

// failParsing records an invalid extraction: the version is appended frozen
// invalid, the report fails with processing_error, and the validation error
// goes back to the caller. Append and failure commit together.
func (s *Service) failParsing(ctx context.Context, report *reportModel.Report, payload labdata.Payload, issues []string, author string) error {
	now := requestcontext.Now(ctx)
	var version *ledgerModels.Version
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		v, err := s.ledger.Append(txCtx, ledgersvc.AppendInput{
			ReportID:         report.ID,
			Payload:          payload,
			Kind:             ledgerModels.KindOriginal,
			ValidationStatus: ledgerModels.ValidationInvalid,
			ValidationErrors: issues,
			CreatedBy:        author,
		})
		if err != nil {
			return err
		}
		version = v
		if err := report.MarkFailed(reportModel.ReasonProcessingError, strings.Join(issues, "; "), now); err != nil {
			return err
		}
		if err := s.reports.Update(txCtx, report); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncVersionAppended(string(ledgerModels.KindOriginal))
	s.metrics.IncPipelineFailure(reportModel.ReasonProcessingError)
	s.noteTransition(ctx, report, reportModel.StatusParsing)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionVersionAppended,
		ReportID:  report.ID,
		SubjectID: report.SubjectID,
		Outcome:   string(ledgerModels.ValidationInvalid),
		Detail:    fmt.Sprintf("version %d (%s)", version.Number, version.Kind),
	})
	s.emit(ctx, audit.Event{
		Action:    audit.ActionReportFailed,
		ReportID:  report.ID,
		SubjectID: report.SubjectID,
		Outcome:   reportModel.ReasonProcessingError,
		Detail:    strings.Join(issues, "; "),
	})
	return labdata.ValidationError(issues)
}
