// Package gaps detects structural weaknesses in a traceability matrix.
// The analyzer is a stateless pass over the composed matrix and the
// original entity snapshot; it classifies findings into seven categories
// with a severity policy and derives aggregate recommendations.
package gaps

import "tmx/internal/model"

// Report is the result of a gap analysis
type Report struct {
	AnalysisID      string      `json:"analysisId"`
	Gaps            []model.Gap `json:"gaps"`
	Summary         Summary     `json:"summary"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// Summary provides aggregate gap statistics
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`

	ByCategory map[model.GapCategory]int `json:"byCategory"`
}

// Per-category recommendation texts attached to individual gaps
var categoryRecommendations = map[model.GapCategory]string{
	model.GapOrphanedCode:        "Link this evidence to a feature or remove it from the analysis",
	model.GapOrphanedFeature:     "Derive a user requirement from this feature or mark it out of scope",
	model.GapOrphanedRequirement: "Complete the derivation chain for this requirement",
	model.GapOrphanedRisk:        "Relate this risk to the software requirements that mitigate it",
	model.GapMissingLink:         "Add the missing traceability link",
	model.GapWeakLink:            "Review the evidence behind this link and confirm or reject it",
	model.GapBrokenChain:         "Extend this chain to the next entity kind",
	model.GapDuplicateLink:       "Remove the duplicate link from the upstream extraction",
}
