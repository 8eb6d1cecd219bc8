package e2e

import (
	"github.com/cucumber/godog"

	"labfhir/e2e/steps/bundle"
	"labfhir/e2e/steps/common"
	"labfhir/e2e/steps/report"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (health, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register report lifecycle steps
	report.RegisterSteps(ctx, tc)

	// Register bundle generation and determinism steps
	bundle.RegisterSteps(ctx, tc)
}
