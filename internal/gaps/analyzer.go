package gaps

import (
	"fmt"

	"tmx/internal/config"
	"tmx/internal/logging"
	"tmx/internal/matrix"
	"tmx/internal/model"
	"tmx/internal/policy"
)

// Analyzer detects traceability gaps in a composed matrix
type Analyzer struct {
	thresholds config.ThresholdConfig
	policy     *policy.Policy
	logger     *logging.Logger
}

// NewAnalyzer creates a gap analyzer with the given thresholds and policy
func NewAnalyzer(cfg *config.Config, pol *policy.Policy, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		thresholds: cfg.Thresholds,
		policy:     pol,
		logger:     logger,
	}
}

// linkIndex holds the per-analysis lookups shared by the detectors
type linkIndex struct {
	sources       map[string]bool                // any link source id
	featureToReq  map[string]int                 // feature id → outgoing requirement links
	userToSoft    map[string]int                 // user req id → outgoing derivation links
	softIncoming  map[string]int                 // software req id → incoming parent links
	softToRisk    map[string]int                 // software req id → outgoing risk links
	riskIncoming  map[string]int                 // risk id → incoming requirement links
	featureChains map[string][]model.TraceLink   // feature id → feature→user-req links
}

func buildIndex(m *model.TraceabilityMatrix) *linkIndex {
	idx := &linkIndex{
		sources:       make(map[string]bool),
		featureToReq:  make(map[string]int),
		userToSoft:    make(map[string]int),
		softIncoming:  make(map[string]int),
		softToRisk:    make(map[string]int),
		riskIncoming:  make(map[string]int),
		featureChains: make(map[string][]model.TraceLink),
	}

	for _, l := range m.Links {
		idx.sources[l.SourceID] = true

		switch {
		case l.SourceKind == model.KindFeature && l.TargetKind == model.KindRequirement:
			idx.featureToReq[l.SourceID]++
			idx.featureChains[l.SourceID] = append(idx.featureChains[l.SourceID], l)
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRequirement:
			idx.userToSoft[l.SourceID]++
			idx.softIncoming[l.TargetID]++
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRisk:
			idx.softToRisk[l.SourceID]++
			idx.riskIncoming[l.TargetID]++
		}
	}

	return idx
}

// Analyze runs all detectors over the matrix and snapshot. It never fails;
// a matrix with no weaknesses yields an empty gap list.
func (a *Analyzer) Analyze(m *model.TraceabilityMatrix, in matrix.Input) *Report {
	idx := buildIndex(m)

	var gaps []model.Gap
	gaps = append(gaps, a.detectOrphanedCode(in, idx)...)
	gaps = append(gaps, a.detectOrphanedFeatures(in, idx)...)
	gaps = append(gaps, a.detectOrphanedRequirements(in, idx)...)
	gaps = append(gaps, a.detectOrphanedRisks(in, idx)...)
	gaps = append(gaps, a.detectMissingLinks(in, idx)...)
	gaps = append(gaps, a.detectWeakLinks(m)...)
	gaps = append(gaps, a.detectBrokenChains(in, idx)...)
	gaps = append(gaps, a.detectDuplicateLinks(m)...)

	summary := summarize(gaps)

	report := &Report{
		AnalysisID:      m.AnalysisID,
		Gaps:            gaps,
		Summary:         summary,
		Recommendations: a.aggregateRecommendations(summary),
	}

	a.logger.Debug("Gap analysis completed", map[string]interface{}{
		"analysisId": m.AnalysisID,
		"gaps":       len(gaps),
		"high":       summary.High,
	})

	return report
}

// detectOrphanedCode reports evidence entries that never appear as a link
// source. Together with linked evidence this exhaustively partitions all
// evidence entries.
func (a *Analyzer) detectOrphanedCode(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap
	for _, f := range in.Features {
		for _, ev := range f.Evidence {
			if idx.sources[ev.Key()] {
				continue
			}
			gaps = append(gaps, a.newGap(model.Gap{
				Category:    model.GapOrphanedCode,
				SourceKind:  model.KindCode,
				SourceID:    ev.Key(),
				Description: fmt.Sprintf("evidence %s is not linked to any feature", ev.Key()),
				Severity:    model.GapSeverityMedium,
			}))
		}
	}
	return gaps
}

// detectOrphanedFeatures reports features that never source a
// feature→requirement link
func (a *Analyzer) detectOrphanedFeatures(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap
	for _, f := range in.Features {
		if idx.featureToReq[f.ID] > 0 {
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:    model.GapOrphanedFeature,
			SourceKind:  model.KindFeature,
			SourceID:    f.ID,
			Description: fmt.Sprintf("feature %s is not derived into any user requirement", f.ID),
			Severity:    model.GapSeverityHigh,
		}))
	}
	return gaps
}

// detectOrphanedRequirements reports requirements missing one side of
// their derivation chain
func (a *Analyzer) detectOrphanedRequirements(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap

	for _, req := range in.UserRequirements {
		if req.Kind != model.UserRequirement {
			continue
		}
		if idx.userToSoft[req.ID] == 0 {
			gaps = append(gaps, a.newGap(model.Gap{
				Category:    model.GapOrphanedRequirement,
				SourceKind:  model.KindRequirement,
				SourceID:    req.ID,
				Description: fmt.Sprintf("user requirement %s has no derived software requirement", req.ID),
				Severity:    model.GapSeverityHigh,
			}))
		}
	}

	for _, req := range in.SoftwareRequirements {
		if req.Kind != model.SoftwareRequirement {
			continue
		}
		if idx.softIncoming[req.ID] == 0 {
			gaps = append(gaps, a.newGap(model.Gap{
				Category:    model.GapOrphanedRequirement,
				SourceKind:  model.KindRequirement,
				SourceID:    req.ID,
				Description: fmt.Sprintf("software requirement %s is not derived from any user requirement", req.ID),
				Severity:    model.GapSeverityHigh,
			}))
		}
		if idx.softToRisk[req.ID] == 0 {
			gaps = append(gaps, a.newGap(model.Gap{
				Category:    model.GapOrphanedRequirement,
				SourceKind:  model.KindRequirement,
				SourceID:    req.ID,
				Description: fmt.Sprintf("software requirement %s does not mitigate any risk", req.ID),
				Severity:    model.GapSeverityMedium,
			}))
		}
	}

	return gaps
}

// detectOrphanedRisks reports risks never targeted by a requirement link
func (a *Analyzer) detectOrphanedRisks(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap
	for _, risk := range in.Risks {
		if idx.riskIncoming[risk.ID] > 0 {
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:    model.GapOrphanedRisk,
			SourceKind:  model.KindRisk,
			SourceID:    risk.ID,
			Description: fmt.Sprintf("risk %s is not mitigated by any software requirement", risk.ID),
			Severity:    model.GapSeverityHigh,
		}))
	}
	return gaps
}

// detectMissingLinks reports evidence-bearing features with no onward
// requirement link, and high-severity risks without redundant requirement
// coverage (policy: Serious and Catastrophic hazards need at least two
// linked requirements)
func (a *Analyzer) detectMissingLinks(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap

	for _, f := range in.Features {
		if len(f.Evidence) == 0 || idx.featureToReq[f.ID] > 0 {
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:    model.GapMissingLink,
			SourceKind:  model.KindFeature,
			SourceID:    f.ID,
			TargetKind:  model.KindRequirement,
			Description: fmt.Sprintf("feature %s has code evidence but no requirement link", f.ID),
			Severity:    model.GapSeverityHigh,
		}))
	}

	for _, risk := range in.Risks {
		if !a.policy.RequiresRedundancy(risk.Severity) {
			continue
		}
		linked := idx.riskIncoming[risk.ID]
		if linked >= a.policy.RedundancyMinimum {
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:   model.GapMissingLink,
			SourceKind: model.KindRisk,
			SourceID:   risk.ID,
			TargetKind: model.KindRequirement,
			Description: fmt.Sprintf("%s risk %s has %d linked requirements, policy requires %d",
				risk.Severity, risk.ID, linked, a.policy.RedundancyMinimum),
			Severity: model.GapSeverityHigh,
		}))
	}

	return gaps
}

// detectWeakLinks classifies low-confidence links: below WeakLinkHigh is
// high severity, between WeakLinkHigh and WeakLinkMedium is medium, at or
// above WeakLinkMedium is not reported
func (a *Analyzer) detectWeakLinks(m *model.TraceabilityMatrix) []model.Gap {
	var gaps []model.Gap
	for _, l := range m.Links {
		var severity string
		switch {
		case l.Confidence < a.thresholds.WeakLinkHigh:
			severity = model.GapSeverityHigh
		case l.Confidence < a.thresholds.WeakLinkMedium:
			severity = model.GapSeverityMedium
		default:
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:    model.GapWeakLink,
			SourceKind:  l.SourceKind,
			SourceID:    l.SourceID,
			TargetKind:  l.TargetKind,
			TargetID:    l.TargetID,
			Description: fmt.Sprintf("link %s → %s has low confidence %.2f", l.SourceID, l.TargetID, l.Confidence),
			Severity:    severity,
		}))
	}
	return gaps
}

// detectBrokenChains reports chains that stop short: a feature→user
// requirement hop with no onward software requirement (high), and a
// complete chain to a software requirement with no onward risk (medium)
func (a *Analyzer) detectBrokenChains(in matrix.Input, idx *linkIndex) []model.Gap {
	var gaps []model.Gap

	for _, f := range in.Features {
		for _, hop := range idx.featureChains[f.ID] {
			userReqID := hop.TargetID
			if idx.userToSoft[userReqID] == 0 {
				gaps = append(gaps, a.newGap(model.Gap{
					Category:   model.GapBrokenChain,
					SourceKind: model.KindFeature,
					SourceID:   f.ID,
					TargetKind: model.KindRequirement,
					TargetID:   userReqID,
					Description: fmt.Sprintf("chain from feature %s stops at user requirement %s with no software requirement",
						f.ID, userReqID),
					Severity: model.GapSeverityHigh,
				}))
				continue
			}

			for _, softReqID := range chainTargets(in, userReqID) {
				if idx.softToRisk[softReqID] == 0 {
					gaps = append(gaps, a.newGap(model.Gap{
						Category:   model.GapBrokenChain,
						SourceKind: model.KindFeature,
						SourceID:   f.ID,
						TargetKind: model.KindRequirement,
						TargetID:   softReqID,
						Description: fmt.Sprintf("chain from feature %s reaches software requirement %s but no risk",
							f.ID, softReqID),
						Severity: model.GapSeverityMedium,
					}))
				}
			}
		}
	}

	return gaps
}

// chainTargets returns the software requirements derived from a user
// requirement, in snapshot order
func chainTargets(in matrix.Input, userReqID string) []string {
	var targets []string
	for _, req := range in.SoftwareRequirements {
		if req.Kind != model.SoftwareRequirement {
			continue
		}
		for _, parent := range req.DerivedFrom {
			if parent == userReqID {
				targets = append(targets, req.ID)
				break
			}
		}
	}
	return targets
}

// detectDuplicateLinks reports every repeat occurrence of an identical
// (source kind, source id, target kind, target id) signature. The first
// occurrence is kept; links with the same endpoints but different
// confidence still match.
func (a *Analyzer) detectDuplicateLinks(m *model.TraceabilityMatrix) []model.Gap {
	seen := make(map[string]bool, len(m.Links))
	var gaps []model.Gap
	for _, l := range m.Links {
		key := l.EndpointKey()
		if !seen[key] {
			seen[key] = true
			continue
		}
		gaps = append(gaps, a.newGap(model.Gap{
			Category:    model.GapDuplicateLink,
			SourceKind:  l.SourceKind,
			SourceID:    l.SourceID,
			TargetKind:  l.TargetKind,
			TargetID:    l.TargetID,
			Description: fmt.Sprintf("duplicate link %s → %s", l.SourceID, l.TargetID),
			Severity:    model.GapSeverityLow,
		}))
	}
	return gaps
}

// newGap fills in the per-category recommendation
func (a *Analyzer) newGap(g model.Gap) model.Gap {
	if g.Recommendation == "" {
		g.Recommendation = categoryRecommendations[g.Category]
	}
	return g
}

func summarize(gaps []model.Gap) Summary {
	summary := Summary{ByCategory: make(map[model.GapCategory]int)}
	for _, g := range gaps {
		switch g.Severity {
		case model.GapSeverityCritical:
			summary.Critical++
		case model.GapSeverityHigh:
			summary.High++
		case model.GapSeverityMedium:
			summary.Medium++
		case model.GapSeverityLow:
			summary.Low++
		}
		summary.ByCategory[g.Category]++
	}
	return summary
}

// aggregateRecommendations derives matrix-level recommendations from gap
// counts
func (a *Analyzer) aggregateRecommendations(summary Summary) []string {
	var recs []string

	if summary.Critical > 0 {
		recs = append(recs, fmt.Sprintf("%d critical gaps require immediate review before release", summary.Critical))
	}
	if n := summary.ByCategory[model.GapOrphanedRequirement]; n > a.policy.OrphanReviewThreshold {
		recs = append(recs, fmt.Sprintf("%d orphaned requirements suggest the derivation step needs review", n))
	}
	if n := summary.ByCategory[model.GapOrphanedRisk]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d risks lack mitigating requirements; complete the risk analysis", n))
	}
	if n := summary.ByCategory[model.GapWeakLink]; n > 0 {
		recs = append(recs, fmt.Sprintf("%d low-confidence links should be manually confirmed", n))
	}

	return recs
}
