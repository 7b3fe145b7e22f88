// Package coverage reduces a traceability matrix into normalized coverage
// ratios and a single completeness score used for regulatory review
// dashboards.
package coverage

import (
	"tmx/internal/logging"
	"tmx/internal/matrix"
	"tmx/internal/model"
	"tmx/internal/output"
)

// Metrics holds the normalized coverage ratios for one analysis run.
// All ratios are in [0,1]; an empty denominator yields 0.0.
type Metrics struct {
	// CodeCoverage: linked evidence-bearing features over all
	// evidence-bearing features
	CodeCoverage float64 `json:"codeCoverage"`
	// FeatureCoverage: features linked to any requirement over all features
	FeatureCoverage float64 `json:"featureCoverage"`
	// RequirementCoverage: software requirements linked to a risk over all
	// software requirements
	RequirementCoverage float64 `json:"requirementCoverage"`
	// EndToEndCoverage: evidence-bearing features with a full chain to a
	// risk over all evidence-bearing features
	EndToEndCoverage float64 `json:"endToEndCoverage"`
	// ConfidenceScore: mean of all non-zero link confidences
	ConfidenceScore float64 `json:"confidenceScore"`
	// CompletenessScore: unweighted mean of the four coverage ratios
	CompletenessScore float64 `json:"completenessScore"`
}

// Calculator computes coverage metrics from a matrix and its snapshot
type Calculator struct {
	logger *logging.Logger
}

// NewCalculator creates a coverage calculator
func NewCalculator(logger *logging.Logger) *Calculator {
	return &Calculator{logger: logger}
}

// Compute derives the coverage metrics for one analysis run
func (c *Calculator) Compute(m *model.TraceabilityMatrix, in matrix.Input) Metrics {
	featureLinked := make(map[string]bool)   // feature id ← code link target
	featureToReq := make(map[string][]string)
	userToSoft := make(map[string][]string)
	softToRisk := make(map[string]bool)

	var confidenceSum float64
	confidenceCount := 0

	for _, l := range m.Links {
		if l.Confidence > 0 {
			confidenceSum += l.Confidence
			confidenceCount++
		}

		switch {
		case l.SourceKind == model.KindCode && l.TargetKind == model.KindFeature:
			featureLinked[l.TargetID] = true
		case l.SourceKind == model.KindFeature && l.TargetKind == model.KindRequirement:
			featureToReq[l.SourceID] = append(featureToReq[l.SourceID], l.TargetID)
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRequirement:
			userToSoft[l.SourceID] = append(userToSoft[l.SourceID], l.TargetID)
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRisk:
			softToRisk[l.SourceID] = true
		}
	}

	evidenceBearing := 0
	evidenceLinked := 0
	reqLinked := 0
	endToEnd := 0

	for _, f := range in.Features {
		if len(featureToReq[f.ID]) > 0 {
			reqLinked++
		}
		if len(f.Evidence) == 0 {
			continue
		}
		evidenceBearing++
		if featureLinked[f.ID] {
			evidenceLinked++
		}
		if hasFullChain(f.ID, featureToReq, userToSoft, softToRisk) {
			endToEnd++
		}
	}

	riskLinkedReqs := 0
	softReqs := 0
	for _, req := range in.SoftwareRequirements {
		if req.Kind != model.SoftwareRequirement {
			continue
		}
		softReqs++
		if softToRisk[req.ID] {
			riskLinkedReqs++
		}
	}

	metrics := Metrics{
		CodeCoverage:        ratio(evidenceLinked, evidenceBearing),
		FeatureCoverage:     ratio(reqLinked, len(in.Features)),
		RequirementCoverage: ratio(riskLinkedReqs, softReqs),
		EndToEndCoverage:    ratio(endToEnd, evidenceBearing),
	}
	if confidenceCount > 0 {
		metrics.ConfidenceScore = output.RoundFloat(confidenceSum / float64(confidenceCount))
	}
	metrics.CompletenessScore = output.RoundFloat(
		(metrics.CodeCoverage + metrics.FeatureCoverage + metrics.RequirementCoverage + metrics.EndToEndCoverage) / 4)

	c.logger.Debug("Coverage computed", map[string]interface{}{
		"analysisId":   m.AnalysisID,
		"completeness": metrics.CompletenessScore,
	})

	return metrics
}

// hasFullChain reports whether any feature→user-requirement→software-
// requirement→risk path exists. The feature is counted once; the walk
// stops at the first full chain found.
func hasFullChain(featureID string, featureToReq, userToSoft map[string][]string, softToRisk map[string]bool) bool {
	for _, userReqID := range featureToReq[featureID] {
		for _, softReqID := range userToSoft[userReqID] {
			if softToRisk[softReqID] {
				return true
			}
		}
	}
	return false
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0.0
	}
	return output.RoundFloat(float64(numerator) / float64(denominator))
}
