package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"tmx/internal/coverage"
	"tmx/internal/gaps"
	"tmx/internal/model"
	"tmx/internal/output"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatJSON renders machine-readable JSON
	FormatJSON OutputFormat = "json"
	// FormatHuman renders human-readable text
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *model.TraceabilityMatrix:
		return formatMatrixHuman(v), nil
	case *gaps.Report:
		return formatGapsHuman(v), nil
	case coverage.Metrics:
		return formatCoverageHuman(v), nil
	default:
		// Unknown types fall back to JSON
		return formatJSON(resp)
	}
}

func formatMatrixHuman(m *model.TraceabilityMatrix) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Traceability matrix %s\n", m.AnalysisID))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Features:              %d\n", m.Summary.Features))
	b.WriteString(fmt.Sprintf("User requirements:     %d\n", m.Summary.UserRequirements))
	b.WriteString(fmt.Sprintf("Software requirements: %d\n", m.Summary.SoftwareRequirements))
	b.WriteString(fmt.Sprintf("Risks:                 %d\n", m.Summary.Risks))
	b.WriteString(fmt.Sprintf("Evidence entries:      %d\n", m.Summary.EvidenceEntries))
	b.WriteString(fmt.Sprintf("Links:                 %d (%d transitive)\n", m.Summary.Links, m.Summary.TransitiveLinks))

	return b.String()
}

func formatGapsHuman(r *gaps.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Gap analysis for %s\n", r.AnalysisID))
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("critical: %d, high: %d, medium: %d, low: %d\n\n",
		r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low))

	for _, g := range r.Gaps {
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", g.Severity, g.Category, g.Description))
		if g.Recommendation != "" {
			b.WriteString(fmt.Sprintf("    → %s\n", g.Recommendation))
		}
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			b.WriteString(fmt.Sprintf("  - %s\n", rec))
		}
	}

	return b.String()
}

func formatCoverageHuman(m coverage.Metrics) string {
	var b strings.Builder

	b.WriteString("Coverage\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Code coverage:        %s\n", output.FormatPercent(m.CodeCoverage)))
	b.WriteString(fmt.Sprintf("Feature coverage:     %s\n", output.FormatPercent(m.FeatureCoverage)))
	b.WriteString(fmt.Sprintf("Requirement coverage: %s\n", output.FormatPercent(m.RequirementCoverage)))
	b.WriteString(fmt.Sprintf("End-to-end coverage:  %s\n", output.FormatPercent(m.EndToEndCoverage)))
	b.WriteString(fmt.Sprintf("Confidence score:     %s\n", output.FormatFloat(m.ConfidenceScore)))
	b.WriteString(fmt.Sprintf("Completeness score:   %s\n", output.FormatFloat(m.CompletenessScore)))

	return b.String()
}
