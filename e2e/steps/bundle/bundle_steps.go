// Package bundle holds the step definitions for artifact generation and the
// determinism checks on regenerated documents.
package bundle

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Body() []byte
	Field(path string) (any, error)
	ReportID() string
	SavedHash() string
	SetSavedHash(h string)
}

// RegisterSteps registers the bundle step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &bundleSteps{tc: tc}

	ctx.Step(`^I generate the bundle$`, steps.generateBundle)
	ctx.Step(`^I regenerate the bundle$`, steps.regenerateBundle)
	ctx.Step(`^I save the artifact content hash$`, steps.saveContentHash)
	ctx.Step(`^the artifact content hash should be unchanged$`, steps.contentHashUnchanged)
	ctx.Step(`^I download the bundle document$`, steps.downloadBundle)
}

type bundleSteps struct {
	tc TestContext
}

func (s *bundleSteps) generateBundle(ctx context.Context) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/bundle", map[string]any{})
}

func (s *bundleSteps) regenerateBundle(ctx context.Context) error {
	return s.tc.POST("/api/v1/reports/"+s.tc.ReportID()+"/bundle", map[string]any{
		"mode": "regeneration",
	})
}

func (s *bundleSteps) saveContentHash(ctx context.Context) error {
	hash, err := s.tc.Field("content_hash")
	if err != nil {
		return err
	}
	s.tc.SetSavedHash(hash.(string))
	return nil
}

func (s *bundleSteps) contentHashUnchanged(ctx context.Context) error {
	hash, err := s.tc.Field("content_hash")
	if err != nil {
		return err
	}
	if hash != s.tc.SavedHash() {
		return fmt.Errorf("content hash changed: %v != %s", hash, s.tc.SavedHash())
	}
	return nil
}

func (s *bundleSteps) downloadBundle(ctx context.Context) error {
	if err := s.tc.GET("/api/v1/reports/" + s.tc.ReportID() + "/bundle"); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("bundle download returned %d: %s", s.tc.Status(), s.tc.Body())
	}
	return nil
}
