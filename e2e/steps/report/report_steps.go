// Package report holds the step definitions for the report lifecycle:
// subject setup, document upload, extraction payloads, and retry.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	Upload(path, subjectID, filename string, content []byte) error
	Status() int
	Body() []byte
	Field(path string) (any, error)
	Salt(s string) string
	SubjectID() string
	SetSubjectID(id string)
	ReportID() string
	SetReportID(id string)
}

// RegisterSteps registers the report lifecycle step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^a subject with external id "([^"]*)" exists$`, steps.subjectExists)
	ctx.Step(`^I upload a document "([^"]*)" with content "([^"]*)"$`, steps.uploadDocument)
	ctx.Step(`^I advance the report with a glucose value of (\d+)$`, steps.advanceWithGlucose)
	ctx.Step(`^I advance the report with an empty payload$`, steps.advanceEmpty)
	ctx.Step(`^I correct the report with a glucose value of (\d+) as "([^"]*)"$`, steps.correctWithGlucose)
	ctx.Step(`^I retry the report into "([^"]*)"$`, steps.retryInto)
	ctx.Step(`^the report status should be "([^"]*)"$`, steps.reportStatusShouldBe)
}

type reportSteps struct {
	tc TestContext
}

func (s *reportSteps) subjectExists(ctx context.Context, externalID string) error {
	err := s.tc.POST("/api/v1/subjects", map[string]any{
		"external_subject_id": s.tc.Salt(externalID),
		"display_name":        "Scenario Subject",
		"subject_type":        "human",
	})
	if err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("subject creation returned %d: %s", s.tc.Status(), s.tc.Body())
	}
	id, err := s.tc.Field("id")
	if err != nil {
		return err
	}
	s.tc.SetSubjectID(id.(string))
	return nil
}

// uploadDocument salts the content so identical literals collide within a
// scenario (the dedup checks rely on that) but never across runs.
func (s *reportSteps) uploadDocument(ctx context.Context, filename, content string) error {
	err := s.tc.Upload("/api/v1/reports", s.tc.SubjectID(), filename, []byte(s.tc.Salt(content)))
	if err != nil {
		return err
	}
	if s.tc.Status() == 201 {
		id, err := s.tc.Field("id")
		if err != nil {
			return err
		}
		s.tc.SetReportID(id.(string))
	}
	return nil
}

func glucosePayload(value int) map[string]any {
	return map[string]any{
		"performing_lab": "Quest Diagnostics East",
		"measurements": []map[string]any{{
			"original_analyte_name": "Glucose",
			"value_type":            "numeric",
			"numeric_value":         value,
			"original_unit":         "mg/dL",
			"reference_range_text":  "70-99",
			"collection_datetime":   time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339),
		}},
	}
}

func (s *reportSteps) advanceWithGlucose(ctx context.Context, value int) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/advance", glucosePayload(value))
}

func (s *reportSteps) advanceEmpty(ctx context.Context) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/advance", map[string]any{
		"measurements": []any{},
	})
}

func (s *reportSteps) correctWithGlucose(ctx context.Context, value int, author string) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/corrections", map[string]any{
		"payload": glucosePayload(value),
		"author":  author,
	})
}

func (s *reportSteps) retryInto(ctx context.Context, target string) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/retry", map[string]any{
		"target": target,
	})
}

func (s *reportSteps) reportStatusShouldBe(ctx context.Context, expected string) error {
	if err := s.tc.GET("/api/v1/reports/" + s.tc.ReportID()); err != nil {
		return err
	}
	status, err := s.tc.Field("status")
	if err != nil {
		return err
	}
	if status != expected {
		return fmt.Errorf("expected report status %q, got %v", expected, status)
	}
	return nil
}
