// Package common holds the step definitions every feature shares: health
// probing, generic requests, and response assertions.
package common

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the e2e context these steps need.
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	Status() int
	Body() []byte
	Field(path string) (any, error)
}

// RegisterSteps registers the shared step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the labfhir service is running$`, steps.serviceIsRunning)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.responseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be present$`, steps.responseFieldShouldBePresent)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health"); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusOK {
		return fmt.Errorf("health check returned %d", s.tc.Status())
	}
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if s.tc.Status() != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBe(ctx context.Context, path, expected string) error {
	value, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", value) != expected {
		return fmt.Errorf("expected field %q to be %q, got %v", path, expected, value)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBePresent(ctx context.Context, path string) error {
	value, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	if value == nil || fmt.Sprintf("%v", value) == "" {
		return fmt.Errorf("field %q is empty", path)
	}
	return nil
}
