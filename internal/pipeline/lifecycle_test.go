package pipeline

import (
	"encoding/json"

	"labfhir/internal/audit"
	bundleModels "labfhir/internal/bundle/models"
	"labfhir/internal/labdata"
	ledgerModels "labfhir/internal/ledger/models"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

func (s *PipelineSuite) TestCorrect() {
	s.Run("appends a corrected version and records the diff", func() {
		report := s.reviewPending("correctable panel", 95)

		version, err := s.service.Correct(s.ctx, report.ID, s.payload(102), "dr.grey")
		s.Require().NoError(err)
		s.Equal(2, version.Number)
		s.Equal(ledgerModels.KindCorrected, version.Kind)
		s.Equal("dr.grey", version.CreatedBy)

		updated, err := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusReviewPending, updated.Status)

		edits, err := s.ledger.ListEdits(s.ctx, version.ID)
		s.Require().NoError(err)
		s.Require().NotEmpty(edits)
		s.Equal("dr.grey", edits[0].EditedBy)

		s.Contains(s.auditActions(report.ID), audit.ActionVersionCorrected)
	})

	s.Run("identical payload appends a version with no edit entries", func() {
		report := s.reviewPending("unchanged panel", 95)

		version, err := s.service.Correct(s.ctx, report.ID, s.payload(95), "dr.grey")
		s.Require().NoError(err)
		s.Equal(2, version.Number)

		edits, err := s.ledger.ListEdits(s.ctx, version.ID)
		s.Require().NoError(err)
		s.Empty(edits)
	})

	s.Run("correction pulls a completed report back to review", func() {
		report := s.completed("completed panel", 95)

		_, err := s.service.Correct(s.ctx, report.ID, s.payload(110), "dr.grey")
		s.Require().NoError(err)

		updated, err := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusReviewPending, updated.Status)

		_, err = s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
		s.Require().NoError(err)
	})

	s.Run("invalid correction leaves the report untouched", func() {
		report := s.reviewPending("guarded panel", 95)

		_, err := s.service.Correct(s.ctx, report.ID, labdata.Payload{}, "dr.grey")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		unchanged, getErr := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(getErr)
		s.Equal(reportModel.StatusReviewPending, unchanged.Status)

		versions, listErr := s.ledger.List(s.ctx, report.ID)
		s.Require().NoError(listErr)
		s.Len(versions, 1)
	})

	s.Run("author falls back to the context actor", func() {
		report := s.reviewPending("actor panel", 95)
		ctx := requestcontext.WithActor(s.ctx, "reviewer-3")

		version, err := s.service.Correct(ctx, report.ID, s.payload(99), "")
		s.Require().NoError(err)
		s.Equal("reviewer-3", version.CreatedBy)
	})

	s.Run("missing author is rejected", func() {
		report := s.reviewPending("anonymous panel", 95)
		_, err := s.service.Correct(s.ctx, report.ID, s.payload(99), "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("correction before any valid version is not found", func() {
		report := s.submit("uncorrectable panel")
		_, err := s.service.Correct(s.ctx, report.ID, s.payload(99), "dr.grey")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("correction on a failed report finds no valid version", func() {
		report := s.submit("failed panel")
		_, err := s.service.Advance(s.ctx, report.ID, labdata.Payload{})
		s.Require().Error(err)

		_, err = s.service.Correct(s.ctx, report.ID, s.payload(99), "dr.grey")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PipelineSuite) TestGenerateBundle() {
	s.Run("initial generation completes the report", func() {
		report := s.reviewPending("bundle panel", 95)
		version, err := s.ledger.LatestValid(s.ctx, report.ID)
		s.Require().NoError(err)

		artifact, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
		s.Require().NoError(err)
		s.Equal(bundleModels.ModeInitial, artifact.Mode)
		s.Equal(version.ID, artifact.VersionID)
		s.Len(artifact.ContentHash, 64)
		s.True(json.Valid(artifact.Document))

		completed, err := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusCompleted, completed.Status)

		s.Contains(s.auditActions(report.ID), audit.ActionBundleGenerated)
	})

	s.Run("regeneration of an unchanged version reproduces the hash", func() {
		report := s.completed("stable panel", 95)
		first, err := s.artifacts.LatestByReport(s.ctx, report.ID)
		s.Require().NoError(err)

		second, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeRegeneration)
		s.Require().NoError(err)
		s.NotEqual(first.ID, second.ID)
		s.Equal(first.ContentHash, second.ContentHash)
		s.Equal(bundleModels.ModeRegeneration, second.Mode)

		all, err := s.artifacts.ListByReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Len(all, 2)

		still, err := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusCompleted, still.Status)
	})

	s.Run("correction changes the regenerated hash", func() {
		report := s.completed("drifting panel", 95)
		first, err := s.artifacts.LatestByReport(s.ctx, report.ID)
		s.Require().NoError(err)

		_, err = s.service.Correct(s.ctx, report.ID, s.payload(120), "dr.grey")
		s.Require().NoError(err)

		second, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
		s.Require().NoError(err)
		s.NotEqual(first.ContentHash, second.ContentHash)
	})

	s.Run("initial generation from uploaded is a conflict", func() {
		report := s.submit("premature panel")
		_, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("regeneration before completion is a conflict", func() {
		report := s.reviewPending("early regen panel", 95)
		_, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeRegeneration)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("unknown mode is rejected", func() {
		report := s.reviewPending("mystery mode panel", 95)
		_, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.GenerationMode("weekly"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("missing valid version fails the report", func() {
		report := s.submit("tampered panel")

		// Simulate out-of-band state damage: review_pending without any
		// appended version.
		raw, err := s.reports.Get(s.ctx, report.ID)
		s.Require().NoError(err)
		raw.Status = reportModel.StatusReviewPending
		s.Require().NoError(s.reports.Update(s.ctx, raw))

		_, err = s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		failed, err := s.service.GetReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusFailed, failed.Status)
		s.Equal(reportModel.ReasonNoValidVersion, failed.ErrorCode)
	})
}

func (s *PipelineSuite) TestRetry() {
	s.Run("retry to parsing accepts a fresh payload", func() {
		report := s.submit("retryable panel")
		_, err := s.service.Advance(s.ctx, report.ID, labdata.Payload{})
		s.Require().Error(err)

		retried, err := s.service.Retry(s.ctx, report.ID, reportModel.StatusParsing)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusParsing, retried.Status)
		s.Empty(retried.ErrorCode)

		advanced, err := s.service.Advance(s.ctx, report.ID, s.payload(95))
		s.Require().NoError(err)
		s.Equal(reportModel.StatusReviewPending, advanced.Status)

		s.Contains(s.auditActions(report.ID), audit.ActionReportRetried)
	})

	s.Run("retry to generating_bundle re-runs assembly", func() {
		report := s.reviewPending("generation retry panel", 95)

		// Simulate a generation failure persisted by an earlier run.
		raw, err := s.reports.Get(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Require().NoError(raw.MarkFailed(reportModel.ReasonBundleGeneration, "assembler crashed", raw.UpdatedAt))
		s.Require().NoError(s.reports.Update(s.ctx, raw))

		retried, err := s.service.Retry(s.ctx, report.ID, reportModel.StatusGeneratingBundle)
		s.Require().NoError(err)
		s.Equal(reportModel.StatusCompleted, retried.Status)

		artifact, err := s.artifacts.LatestByReport(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(bundleModels.ModeInitial, artifact.Mode)
	})

	s.Run("retry on a non-failed report is a conflict", func() {
		report := s.submit("healthy panel")
		_, err := s.service.Retry(s.ctx, report.ID, reportModel.StatusParsing)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("retry target outside the table is rejected", func() {
		report := s.submit("bad target panel")
		_, err := s.service.Retry(s.ctx, report.ID, reportModel.StatusCompleted)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("retry on an unknown report is not found", func() {
		_, err := s.service.Retry(s.ctx, id.NewReportID(), reportModel.StatusParsing)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PipelineSuite) TestLifecycleAuditTrail() {
	report := s.submit("audited panel")
	_, err := s.service.Advance(s.ctx, report.ID, s.payload(95))
	s.Require().NoError(err)
	_, err = s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeInitial)
	s.Require().NoError(err)

	s.Equal([]audit.Action{
		audit.ActionReportSubmitted,
		audit.ActionStateChanged, // uploaded -> parsing
		audit.ActionStateChanged, // parsing -> review_pending
		audit.ActionVersionAppended,
		audit.ActionStateChanged, // review_pending -> generating_bundle
		audit.ActionStateChanged, // generating_bundle -> completed
		audit.ActionBundleGenerated,
	}, s.auditActions(report.ID))

	trail, err := s.service.ListAuditTrail(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Len(trail, 7)
}

func (s *PipelineSuite) TestReads() {
	s.Run("lists a subject's reports in submission order", func() {
		a := s.submit("read panel one")
		b := s.submit("read panel two")

		reports, err := s.service.ListReportsBySubject(s.ctx, s.subject.ID)
		s.Require().NoError(err)
		s.Require().Len(reports, 2)
		s.Equal(a.ID, reports[0].ID)
		s.Equal(b.ID, reports[1].ID)
	})

	s.Run("listing for an unknown subject is not found", func() {
		_, err := s.service.ListReportsBySubject(s.ctx, id.NewSubjectID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("latest artifact requires a generated bundle", func() {
		report := s.submit("artifactless panel")
		_, err := s.service.LatestArtifact(s.ctx, report.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("lists artifacts oldest first", func() {
		report := s.completed("artifact list panel", 95)
		_, err := s.service.GenerateBundle(s.ctx, report.ID, bundleModels.ModeRegeneration)
		s.Require().NoError(err)

		artifacts, err := s.service.ListArtifacts(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Require().Len(artifacts, 2)
		s.Equal(bundleModels.ModeInitial, artifacts[0].Mode)
		s.Equal(bundleModels.ModeRegeneration, artifacts[1].Mode)

		latest, err := s.service.LatestArtifact(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(artifacts[1].ID, latest.ID)
	})

	s.Run("serves the original document bytes", func() {
		report := s.submit("download panel")

		got, data, err := s.service.GetDocument(s.ctx, report.ID)
		s.Require().NoError(err)
		s.Equal(report.ID, got.ID)
		s.Equal([]byte("download panel"), data)
	})

	s.Run("duplicate reports resolve to the canonical document", func() {
		canonical := s.submit("shared bytes")
		_, err := s.service.Submit(s.ctx, SubmitInput{
			SubjectID: s.subject.ID,
			Filename:  "again.json",
			MimeType:  "application/json",
			Bytes:     []byte("shared bytes"),
		})
		s.Require().Error(err)

		reports, err := s.service.ListReportsBySubject(s.ctx, s.subject.ID)
		s.Require().NoError(err)
		var duplicate *reportModel.Report
		for _, r := range reports {
			if r.IsDuplicate() {
				duplicate = r
			}
		}
		s.Require().NotNil(duplicate)
		s.Equal(canonical.ID, *duplicate.DuplicateOf)

		_, data, err := s.service.GetDocument(s.ctx, duplicate.ID)
		s.Require().NoError(err)
		s.Equal([]byte("shared bytes"), data)
	})
}
