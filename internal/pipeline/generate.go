package pipeline

import (
	"context"
	"fmt"
	"time"

	"labfhir/internal/audit"
	"labfhir/internal/bundle"
	bundleModels "labfhir/internal/bundle/models"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

// GenerateBundle assembles the FHIR document for a report's latest valid
// version and stores it as a new artifact.
//
// Mode initial runs review_pending or editing through generating_bundle to
// completed. Mode regeneration runs completed through regenerating_bundle
// back to completed; because assembly is deterministic, regenerating an
// unchanged version produces an artifact with the same content hash as the
// previous one. Artifacts are append-only either way.
//
// A report already sitting in the working state is accepted as-is: that is
// the recovery path when an earlier run persisted the intermediate state but
// stopped before committing the artifact.
func (s *Service) GenerateBundle(ctx context.Context, reportID id.ReportID, mode bundleModels.GenerationMode) (*bundleModels.BundleArtifact, error) {
	ctx, span := s.startSpan(ctx, "pipeline.GenerateBundle", reportID)
	defer span.End()

	var working reportModel.Status
	switch mode {
	case bundleModels.ModeInitial:
		working = reportModel.StatusGeneratingBundle
	case bundleModels.ModeRegeneration:
		working = reportModel.StatusRegeneratingBundle
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown generation mode %q", mode))
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
	return s.generateLocked(ctx, report, working, mode)
}

// generateLocked runs the assembly flow for a report whose lock the caller
// already holds. It enters the working state unless the report is already
// there, assembles, and commits artifact plus completion together. Assembly
// and no-valid-version failures mark the report failed before returning.
func (s *Service) generateLocked(ctx context.Context, report *reportModel.Report, working reportModel.Status, mode bundleModels.GenerationMode) (*bundleModels.BundleArtifact, error) {
	now := requestcontext.Now(ctx)
	if report.Status != working {
		from := report.Status
		if err := report.Transition(working, now); err != nil {
			return nil, err
		}
		if err := s.reports.Update(ctx, report); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report state")
		}
		s.noteTransition(ctx, report, from)
	}

	subject, err := s.subjects.Get(ctx, report.SubjectID)
	if err != nil {
		return nil, err
	}

	version, err := s.ledger.LatestValid(ctx, report.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.failGeneration(ctx, report, reportModel.ReasonNoValidVersion, "no valid version to assemble")
		}
		return nil, err
	}

	start := time.Now()
	doc, err := s.assembler.Assemble(bundle.AssemblyInput{
		Subject: subject,
		Report:  report,
		Payload: version.Payload,
	})
	s.metrics.ObserveBundleAssembly(time.Since(start))
	if err != nil {
		s.failGeneration(ctx, report, reportModel.ReasonBundleGeneration, err.Error())
		return nil, err
	}

	artifact, err := bundleModels.NewBundleArtifact(id.NewArtifactID(), report.ID, version.ID, doc.Canonical, doc.ContentHash, mode, now)
	if err != nil {
		s.failGeneration(ctx, report, reportModel.ReasonBundleGeneration, err.Error())
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.artifacts.Create(txCtx, artifact); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store bundle artifact")
		}
		if err := report.Transition(reportModel.StatusCompleted, now); err != nil {
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

	s.metrics.IncBundleGenerated(string(mode))
	s.noteTransition(ctx, report, working)
	s.logger.InfoContext(ctx, "bundle generated",
		"report_id", report.ID.String(),
		"artifact_id", artifact.ID.String(),
		"version", version.Number,
		"mode", string(mode),
		"content_hash", artifact.ContentHash,
	)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionBundleGenerated,
		ReportID:  report.ID,
		SubjectID: report.SubjectID,
		Outcome:   string(mode),
		Detail:    fmt.Sprintf("artifact %s (version %d)", artifact.ID, version.Number),
	})
	return artifact, nil
}

// failGeneration marks the report failed after an assembly problem. Best
// effort: a persistence error here is logged, never returned, so it cannot
// mask the failure that brought us here.
func (s *Service) failGeneration(ctx context.Context, report *reportModel.Report, reason, message string) {
	now := requestcontext.Now(ctx)
	from := report.Status
	if err := report.MarkFailed(reason, message, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark report failed",
			"report_id", report.ID.String(), "error", err)
		return
	}
	if err := s.reports.Update(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist report failure",
			"report_id", report.ID.String(), "error", err)
		return
	}
	s.metrics.IncPipelineFailure(reason)
	s.noteTransition(ctx, report, from)
	s.emit(ctx, audit.Event{
		Action:    audit.ActionReportFailed,
		ReportID:  report.ID,
		SubjectID: report.SubjectID,
		Outcome:   reason,
		Detail:    message,
	})
}

// LatestArtifact returns the newest stored artifact for a report.
func (s *Service) LatestArtifact(ctx context.Context, reportID id.ReportID) (*bundleModels.BundleArtifact, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	artifact, err := s.artifacts.LatestByReport(ctx, reportID)
	if err != nil {
		return nil, artifactNotFound(err, reportID)
	}
	return artifact, nil
}

// ListArtifacts returns every stored artifact for a report, oldest first.
func (s *Service) ListArtifacts(ctx context.Context, reportID id.ReportID) ([]*bundleModels.BundleArtifact, error) {
	if _, err := s.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	artifacts, err := s.artifacts.ListByReport(ctx, reportID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list artifacts")
	}
	return artifacts, nil
}
