package pipeline

import (
	"strings"
	"time"

	bundleModels "labfhir/internal/bundle/models"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
)

// forgeArtifact stores a newer artifact whose hash cannot match what
// assembly produces, simulating out-of-band corruption.
func (s *PipelineSuite) forgeArtifact(reportID id.ReportID, hash string) *bundleModels.BundleArtifact {
	good, err := s.artifacts.LatestByReport(s.ctx, reportID)
	s.Require().NoError(err)

	forged, err := bundleModels.NewBundleArtifact(
		id.NewArtifactID(), reportID, good.VersionID,
		[]byte(`{"resourceType":"Bundle"}`), hash,
		bundleModels.ModeRegeneration, time.Now(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.artifacts.Create(s.ctx, forged))
	return forged
}

func (s *PipelineSuite) TestVerifyArtifactsCleanState() {
	s.completed("verified panel one", 95)
	s.completed("verified panel two", 110)

	result, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, result.Checked)
	s.Equal(2, result.Verified)
	s.Empty(result.Mismatches)
	s.False(result.CheckedAt.IsZero())
}

func (s *PipelineSuite) TestVerifyArtifactsChecksOnlyCompleted() {
	s.submit("uploaded only")
	s.reviewPending("review only", 95)

	result, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, result.Checked)
	s.Empty(result.Mismatches)
}

func (s *PipelineSuite) TestVerifyArtifactsFlagsTampering() {
	report := s.completed("tampered artifact panel", 95)
	good, err := s.artifacts.LatestByReport(s.ctx, report.ID)
	s.Require().NoError(err)
	forged := s.forgeArtifact(report.ID, strings.Repeat("ab", 32))

	result, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, result.Checked)
	s.Equal(0, result.Verified)
	s.Require().Len(result.Mismatches, 1)

	m := result.Mismatches[0]
	s.Equal(report.ID, m.ReportID)
	s.Equal(MismatchHash, m.Reason)
	s.Equal(forged.ID.String(), m.ArtifactID)
	s.Equal(forged.ContentHash, m.StoredHash)
	s.Equal(good.ContentHash, m.ComputedHash)
}

func (s *PipelineSuite) TestVerifyArtifactsFlagsMissingArtifact() {
	report := s.submit("artifact vanished panel")
	raw, err := s.reports.Get(s.ctx, report.ID)
	s.Require().NoError(err)
	raw.Status = reportModel.StatusCompleted
	s.Require().NoError(s.reports.Update(s.ctx, raw))

	result, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(result.Mismatches, 1)
	s.Equal(MismatchNoArtifact, result.Mismatches[0].Reason)
	s.Empty(result.Mismatches[0].ArtifactID)
}

func (s *PipelineSuite) TestVerifyArtifactsIsReadOnly() {
	report := s.completed("inert sweep panel", 95)

	_, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)

	after, err := s.service.GetReport(s.ctx, report.ID)
	s.Require().NoError(err)
	s.Equal(reportModel.StatusCompleted, after.Status)
	s.Equal(report.UpdatedAt, after.UpdatedAt)
}

func (s *PipelineSuite) TestVerifyArtifactsOrdersMismatches() {
	a := s.completed("ordered panel a", 95)
	b := s.completed("ordered panel b", 96)
	s.forgeArtifact(a.ID, strings.Repeat("cd", 32))
	s.forgeArtifact(b.ID, strings.Repeat("ef", 32))

	result, err := s.service.VerifyArtifacts(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, result.Checked)
	s.Require().Len(result.Mismatches, 2)
	s.Less(result.Mismatches[0].ReportID.String(), result.Mismatches[1].ReportID.String())
}
