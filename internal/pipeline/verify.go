package pipeline

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"labfhir/internal/bundle"
	reportModel "labfhir/internal/report/models"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/platform/sentinel"
	"labfhir/pkg/requestcontext"
)

// Mismatch reasons reported by VerifyArtifacts.
const (
	MismatchHash           = "hash_mismatch"
	MismatchNoArtifact     = "missing_artifact"
	MismatchNoValidVersion = "no_valid_version"
	MismatchAssembly       = "assembly_error"
)

// VerifyMismatch is one completed report whose stored artifact could not be
// reproduced.
type VerifyMismatch struct {
	ReportID     id.ReportID `json:"report_id"`
	ArtifactID   string      `json:"artifact_id,omitempty"`
	Reason       string      `json:"reason"`
	StoredHash   string      `json:"stored_hash,omitempty"`
	ComputedHash string      `json:"computed_hash,omitempty"`
	Detail       string      `json:"detail,omitempty"`
}

// VerifyResult summarizes one verification sweep.
type VerifyResult struct {
	CheckedAt  time.Time        `json:"checked_at"`
	Checked    int              `json:"checked"`
	Verified   int              `json:"verified"`
	Mismatches []VerifyMismatch `json:"mismatches,omitempty"`
}

// VerifyArtifacts re-assembles every completed report's latest valid version
// and compares the content hash against the newest stored artifact. Because
// assembly is deterministic, any divergence means stored state was corrupted
// or mutated out of band.
//
// The sweep is read-only and takes no locks; a report completed or
// regenerated mid-sweep is simply observed in whichever state the reads
// caught it. Re-assemblies run concurrently, bounded by the configured
// parallelism. Store failures abort the sweep; per-report semantic problems
// are reported as mismatches instead.
func (s *Service) VerifyArtifacts(ctx context.Context) (*VerifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.VerifyArtifacts")
	defer span.End()

	completed, err := s.reports.ListByStatus(ctx, reportModel.StatusCompleted)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list completed reports")
	}

	var (
		mu         sync.Mutex
		mismatches []VerifyMismatch
	)
	record := func(m VerifyMismatch) {
		mu.Lock()
		mismatches = append(mismatches, m)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.verifyParallelism)
	for _, report := range completed {
		g.Go(func() error {
			return s.verifyReport(gctx, report, record)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(mismatches, func(i, j int) bool {
		return mismatches[i].ReportID.String() < mismatches[j].ReportID.String()
	})

	result := &VerifyResult{
		CheckedAt:  requestcontext.Now(ctx),
		Checked:    len(completed),
		Verified:   len(completed) - len(mismatches),
		Mismatches: mismatches,
	}
	s.logger.InfoContext(ctx, "artifact verification sweep finished",
		"checked", result.Checked,
		"verified", result.Verified,
		"mismatches", len(result.Mismatches),
	)
	return result, nil
}

func (s *Service) verifyReport(ctx context.Context, report *reportModel.Report, record func(VerifyMismatch)) error {
	artifact, err := s.artifacts.LatestByReport(ctx, report.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		record(VerifyMismatch{
			ReportID: report.ID,
			Reason:   MismatchNoArtifact,
			Detail:   "completed report has no stored artifact",
		})
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load artifact")
	}

	version, err := s.ledger.LatestValid(ctx, report.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			record(VerifyMismatch{
				ReportID:   report.ID,
				ArtifactID: artifact.ID.String(),
				Reason:     MismatchNoValidVersion,
				StoredHash: artifact.ContentHash,
				Detail:     "completed report has no valid version",
			})
			return nil
		}
		return err
	}

	subject, err := s.subjects.Get(ctx, report.SubjectID)
	if err != nil {
		return err
	}

	doc, err := s.assembler.Assemble(bundle.AssemblyInput{
		Subject: subject,
		Report:  report,
		Payload: version.Payload,
	})
	if err != nil {
		record(VerifyMismatch{
			ReportID:   report.ID,
			ArtifactID: artifact.ID.String(),
			Reason:     MismatchAssembly,
			StoredHash: artifact.ContentHash,
			Detail:     err.Error(),
		})
		return nil
	}

	if doc.ContentHash != artifact.ContentHash {
		record(VerifyMismatch{
			ReportID:     report.ID,
			ArtifactID:   artifact.ID.String(),
			Reason:       MismatchHash,
			StoredHash:   artifact.ContentHash,
			ComputedHash: doc.ContentHash,
		})
	}
	return nil
}
