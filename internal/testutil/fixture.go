// Package testutil provides shared entity fixtures for tests.
package testutil

import (
	"io"

	"tmx/internal/logging"
	"tmx/internal/matrix"
	"tmx/internal/model"
)

// SilentLogger returns a logger that discards all output
func SilentLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

// ChainInput returns a snapshot with one complete chain
// (code → FEAT-1 → UR-1 → SR-1 → RISK-1) and one orphan feature FEAT-2
// that has evidence but no requirement link
func ChainInput() matrix.Input {
	return matrix.Input{
		AnalysisID: "run-001",
		Features: []model.Feature{
			{
				ID:          "FEAT-1",
				Description: "Infusion rate limiting",
				Confidence:  0.85,
				Evidence: []model.CodeReference{
					{FilePath: "pump/rate.c", StartLine: 10, EndLine: 42, Function: "clamp_rate"},
				},
			},
			{
				ID:          "FEAT-2",
				Description: "Diagnostic self-test",
				Confidence:  0.7,
				Evidence: []model.CodeReference{
					{FilePath: "pump/selftest.c", StartLine: 5, EndLine: 60, Function: "run_selftest"},
				},
			},
		},
		UserRequirements: []model.Requirement{
			{
				ID:          "UR-1",
				Kind:        model.UserRequirement,
				Text:        "The pump shall limit infusion rate to the prescribed maximum",
				DerivedFrom: []string{"FEAT-1"},
			},
		},
		SoftwareRequirements: []model.Requirement{
			{
				ID:          "SR-1",
				Kind:        model.SoftwareRequirement,
				Text:        "The rate controller shall clamp commanded rate to the configured ceiling",
				DerivedFrom: []string{"UR-1"},
			},
		},
		Risks: []model.RiskItem{
			{
				ID:                  "RISK-1",
				Hazard:              "Over-infusion",
				Severity:            model.SeveritySerious,
				RelatedRequirements: []string{"SR-1"},
			},
		},
	}
}

// EmptyInput returns a snapshot with no entities
func EmptyInput() matrix.Input {
	return matrix.Input{AnalysisID: "run-empty"}
}
