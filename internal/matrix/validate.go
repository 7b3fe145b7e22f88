package matrix

import (
	"fmt"

	"tmx/internal/config"
	"tmx/internal/model"
)

// Validate inspects a built matrix and returns an ordered list of
// human-readable issues. It never fails; an empty slice means no issues.
// Validation is advisory: issues become user-visible warnings in callers.
func Validate(m *model.TraceabilityMatrix, thresholds config.ThresholdConfig) []string {
	var issues []string

	kindCounts := make(map[model.LinkKind]int)
	featureLinks := 0
	requirementLinks := 0
	subThreshold := 0

	for _, l := range m.Links {
		kindCounts[l.Kind]++
		if l.TargetKind == model.KindFeature {
			featureLinks++
		}
		if l.TargetKind == model.KindRequirement {
			requirementLinks++
		}
		if l.Confidence < thresholds.WeakLinkMedium {
			subThreshold++
		}
	}

	if featureLinks == 0 {
		issues = append(issues, "matrix contains no code-to-feature links; no evidence was linked")
	}
	if requirementLinks == 0 {
		issues = append(issues, "matrix contains no requirement links; derivation chains are empty")
	}
	if subThreshold > 0 {
		issues = append(issues, fmt.Sprintf("%d links fall below the %.2f confidence threshold", subThreshold, thresholds.WeakLinkMedium))
	}

	// A single kind dominating the graph usually means upstream extraction
	// only produced one hop of the chain
	if len(m.Links) >= 10 {
		for _, kind := range expectedKinds {
			if float64(kindCounts[kind]) > 0.9*float64(len(m.Links)) {
				issues = append(issues, fmt.Sprintf("link kind %q accounts for more than 90%% of all links", kind))
			}
		}
	}

	for _, kind := range expectedKinds {
		if kindCounts[kind] == 0 {
			issues = append(issues, fmt.Sprintf("expected link kind %q is missing from the matrix", kind))
		}
	}

	return issues
}

var expectedKinds = []model.LinkKind{
	model.LinkImplements,
	model.LinkDerivesTo,
	model.LinkMitigatedBy,
}
