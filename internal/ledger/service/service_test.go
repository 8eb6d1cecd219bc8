package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"labfhir/internal/labdata"
	"labfhir/internal/ledger/models"
	versionstore "labfhir/internal/ledger/store/version"
	id "labfhir/pkg/domain"
	dErrors "labfhir/pkg/domain-errors"
	"labfhir/pkg/requestcontext"
)

type LedgerServiceSuite struct {
	suite.Suite
	store   *versionstore.MemoryStore
	service *Service
	ctx     context.Context
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.store = versionstore.NewMemory()
	s.ctx = context.Background()

	var err error
	s.service, err = New(s.store)
	s.Require().NoError(err)
}

func (s *LedgerServiceSuite) payload(glucose float64) labdata.Payload {
	collected := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	p := labdata.Payload{
		Measurements: []labdata.Measurement{{
			OriginalAnalyteName: "Glucose",
			ValueType:           labdata.ValueNumeric,
			NumericValue:        &glucose,
			OriginalUnit:        "mg/dL",
			CollectionDateTime:  collected,
		}},
	}
	p.Normalize()
	return p
}

func (s *LedgerServiceSuite) appendValid(reportID id.ReportID, glucose float64, kind models.VersionKind) *models.Version {
	version, err := s.service.Append(s.ctx, AppendInput{
		ReportID:         reportID,
		Payload:          s.payload(glucose),
		Kind:             kind,
		ValidationStatus: models.ValidationValid,
		CreatedBy:        "extractor",
	})
	s.Require().NoError(err)
	return version
}

func (s *LedgerServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "version store is required")
	})
}

func (s *LedgerServiceSuite) TestAppend() {
	s.Run("first version gets number 1", func() {
		version := s.appendValid(id.NewReportID(), 95.0, models.KindOriginal)
		s.Equal(1, version.Number)
		s.Equal(models.KindOriginal, version.Kind)
		s.True(version.IsValid())
	})

	s.Run("numbers increment by one per append", func() {
		reportID := id.NewReportID()
		s.Equal(1, s.appendValid(reportID, 95.0, models.KindOriginal).Number)
		s.Equal(2, s.appendValid(reportID, 96.0, models.KindCorrected).Number)
		s.Equal(3, s.appendValid(reportID, 97.0, models.KindCorrected).Number)
	})

	s.Run("invalid versions consume numbers too", func() {
		reportID := id.NewReportID()
		s.Equal(1, s.appendValid(reportID, 95.0, models.KindOriginal).Number)

		invalid, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         reportID,
			Payload:          s.payload(96.0),
			Kind:             models.KindCorrected,
			ValidationStatus: models.ValidationInvalid,
			ValidationErrors: []string{"measurements[0].numeric_value: required for value_type numeric"},
			CreatedBy:        "reviewer",
		})
		s.Require().NoError(err)
		s.Equal(2, invalid.Number)

		s.Equal(3, s.appendValid(reportID, 97.0, models.KindCorrected).Number)
	})

	s.Run("invalid status requires validation errors", func() {
		_, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         id.NewReportID(),
			Payload:          s.payload(95.0),
			Kind:             models.KindOriginal,
			ValidationStatus: models.ValidationInvalid,
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))
	})

	s.Run("valid status rejects validation errors", func() {
		_, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         id.NewReportID(),
			Payload:          s.payload(95.0),
			Kind:             models.KindOriginal,
			ValidationStatus: models.ValidationValid,
			ValidationErrors: []string{"leftover"},
		})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))
	})

	s.Run("stored payload is isolated from caller mutation", func() {
		reportID := id.NewReportID()
		payload := s.payload(95.0)
		version, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         reportID,
			Payload:          payload,
			Kind:             models.KindOriginal,
			ValidationStatus: models.ValidationValid,
			CreatedBy:        "extractor",
		})
		s.Require().NoError(err)

		payload.Measurements[0].OriginalAnalyteName = "Mutated"

		stored, err := s.service.Get(s.ctx, version.ID)
		s.Require().NoError(err)
		s.Equal("Glucose", stored.Payload.Measurements[0].OriginalAnalyteName)
	})

	s.Run("stamps request-scoped time", func() {
		at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(s.ctx, at)

		version, err := s.service.Append(ctx, AppendInput{
			ReportID:         id.NewReportID(),
			Payload:          s.payload(95.0),
			Kind:             models.KindOriginal,
			ValidationStatus: models.ValidationValid,
			CreatedBy:        "extractor",
		})
		s.Require().NoError(err)
		s.True(version.CreatedAt.Equal(at))
	})
}

func (s *LedgerServiceSuite) TestLatestValid() {
	s.Run("no versions returns not found", func() {
		_, err := s.service.LatestValid(s.ctx, id.NewReportID())
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("skips trailing invalid versions", func() {
		reportID := id.NewReportID()
		s.appendValid(reportID, 95.0, models.KindOriginal)
		valid := s.appendValid(reportID, 96.0, models.KindCorrected)

		_, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         reportID,
			Payload:          s.payload(97.0),
			Kind:             models.KindCorrected,
			ValidationStatus: models.ValidationInvalid,
			ValidationErrors: []string{"measurements[0].operator: unknown operator \"~\""},
			CreatedBy:        "reviewer",
		})
		s.Require().NoError(err)

		latest, err := s.service.LatestValid(s.ctx, reportID)
		s.Require().NoError(err)
		s.Equal(valid.ID, latest.ID)
		s.Equal(2, latest.Number)
	})

	s.Run("only invalid versions returns not found", func() {
		reportID := id.NewReportID()
		_, err := s.service.Append(s.ctx, AppendInput{
			ReportID:         reportID,
			Payload:          s.payload(95.0),
			Kind:             models.KindOriginal,
			ValidationStatus: models.ValidationInvalid,
			ValidationErrors: []string{"measurements: at least one measurement is required"},
			CreatedBy:        "extractor",
		})
		s.Require().NoError(err)

		_, err = s.service.LatestValid(s.ctx, reportID)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *LedgerServiceSuite) TestList() {
	s.Run("returns versions ascending by number", func() {
		reportID := id.NewReportID()
		s.appendValid(reportID, 95.0, models.KindOriginal)
		s.appendValid(reportID, 96.0, models.KindCorrected)
		s.appendValid(reportID, 97.0, models.KindCorrected)

		versions, err := s.service.List(s.ctx, reportID)
		s.Require().NoError(err)
		s.Require().Len(versions, 3)
		for i, v := range versions {
			s.Equal(i+1, v.Number)
		}
	})

	s.Run("unknown report returns empty list", func() {
		versions, err := s.service.List(s.ctx, id.NewReportID())
		s.Require().NoError(err)
		s.Empty(versions)
	})
}

func (s *LedgerServiceSuite) TestRecordEdits() {
	s.Run("unknown version returns not found", func() {
		changes := []labdata.FieldChange{{Path: "measurements[0].numeric_value", Old: "95.0", New: "96.0"}}
		_, err := s.service.RecordEdits(s.ctx, id.NewVersionID(), changes, "reviewer")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("empty change list is a no-op", func() {
		entries, err := s.service.RecordEdits(s.ctx, id.NewVersionID(), nil, "reviewer")
		s.NoError(err)
		s.Empty(entries)
	})

	s.Run("records diff output against a corrected version", func() {
		reportID := id.NewReportID()
		original := s.appendValid(reportID, 95.0, models.KindOriginal)
		corrected := s.appendValid(reportID, 105.0, models.KindCorrected)

		changes := labdata.Diff(original.Payload, corrected.Payload)
		s.Require().NotEmpty(changes)

		entries, err := s.service.RecordEdits(s.ctx, corrected.ID, changes, "dr.jones")
		s.Require().NoError(err)
		s.Require().Len(entries, len(changes))
		s.Equal("measurements[0].numeric_value", entries[0].FieldPath)
		s.Equal("95.0", entries[0].OldValue)
		s.Equal("105.0", entries[0].NewValue)
		s.Equal("dr.jones", entries[0].EditedBy)

		listed, err := s.service.ListEdits(s.ctx, corrected.ID)
		s.Require().NoError(err)
		s.Equal(entries, listed)
	})
}
