// Package matrix builds the traceability matrix: single-hop link
// construction, transitive closure composition, and matrix validation.
// Construction is synchronous, CPU-bound, and deterministic: rebuilding
// from the same input yields the same link counts and confidences
// (link identifiers are synthesized per run and may differ).
package matrix

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"tmx/internal/config"
	"tmx/internal/logging"
	"tmx/internal/model"
)

// Input is the immutable entity snapshot a matrix is built from
type Input struct {
	AnalysisID           string
	Features             []model.Feature
	UserRequirements     []model.Requirement
	SoftwareRequirements []model.Requirement
	Risks                []model.RiskItem
}

// Builder constructs traceability matrices from entity snapshots
type Builder struct {
	cfg    config.ConfidenceConfig
	logger *logging.Logger
	now    func() time.Time
	newID  func() string
}

// NewBuilder creates a matrix builder using the configured confidence rules
func NewBuilder(cfg *config.Config, logger *logging.Logger) *Builder {
	return &Builder{
		cfg:    cfg.Confidence,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Build constructs the full matrix for one analysis run. It never fails:
// unresolved parent or relation ids are dropped here and surface later as
// gaps. A link is only ever constructed between ids present in the input.
func (b *Builder) Build(in Input) *model.TraceabilityMatrix {
	featuresByID := make(map[string]model.Feature, len(in.Features))
	for _, f := range in.Features {
		featuresByID[f.ID] = f
	}
	userReqsByID := make(map[string]model.Requirement, len(in.UserRequirements))
	for _, r := range in.UserRequirements {
		if r.Kind != model.UserRequirement {
			// Entities of an unexpected kind are skipped, never raised
			continue
		}
		userReqsByID[r.ID] = r
	}
	softReqsByID := make(map[string]model.Requirement, len(in.SoftwareRequirements))
	for _, r := range in.SoftwareRequirements {
		if r.Kind != model.SoftwareRequirement {
			continue
		}
		softReqsByID[r.ID] = r
	}

	links := make([]model.TraceLink, 0, len(in.Features)*2)

	links = append(links, b.buildCodeFeatureLinks(in.Features)...)
	featureLinks := b.buildFeatureRequirementLinks(in.UserRequirements, featuresByID)
	links = append(links, featureLinks...)
	derivationLinks := b.buildRequirementLinks(in.SoftwareRequirements, userReqsByID)
	links = append(links, derivationLinks...)
	riskLinks := b.buildRiskLinks(in.Risks, softReqsByID)
	links = append(links, riskLinks...)

	transitive := b.composeTransitive(in.Features, featureLinks, derivationLinks)
	links = append(links, transitive...)

	m := &model.TraceabilityMatrix{
		AnalysisID:         in.AnalysisID,
		Links:              links,
		CodeToRequirements: indexTargets(transitive),
		UserToSoftware:     indexTargets(derivationLinks),
		RequirementToRisks: indexTargets(riskLinks),
		Summary: model.MatrixSummary{
			Features:             len(in.Features),
			UserRequirements:     len(in.UserRequirements),
			SoftwareRequirements: len(in.SoftwareRequirements),
			Risks:                len(in.Risks),
			EvidenceEntries:      countEvidence(in.Features),
			Links:                len(links),
			TransitiveLinks:      len(transitive),
		},
		CreatedAt: b.now(),
	}

	b.logger.Debug("Matrix built", map[string]interface{}{
		"analysisId":      in.AnalysisID,
		"links":           len(links),
		"transitiveLinks": len(transitive),
	})

	return m
}

// buildCodeFeatureLinks emits one code→feature link per (feature, evidence)
// pair at the feature's own confidence
func (b *Builder) buildCodeFeatureLinks(features []model.Feature) []model.TraceLink {
	var links []model.TraceLink
	for _, f := range features {
		for _, ev := range f.Evidence {
			links = append(links, model.TraceLink{
				ID:         b.newID(),
				SourceKind: model.KindCode,
				SourceID:   ev.Key(),
				TargetKind: model.KindFeature,
				TargetID:   f.ID,
				Kind:       model.LinkImplements,
				Confidence: f.Confidence,
				Detail: model.CodeToFeature{
					FilePath:  ev.FilePath,
					StartLine: ev.StartLine,
					EndLine:   ev.EndLine,
					Function:  ev.Function,
					FeatureID: f.ID,
				},
			})
		}
	}
	return links
}

// buildFeatureRequirementLinks emits feature→user-requirement links for
// every derivation id that resolves to an existing feature. Confidence is
// the feature's own confidence capped at DerivationCap. Unresolved parent
// ids are dropped silently.
func (b *Builder) buildFeatureRequirementLinks(userReqs []model.Requirement, features map[string]model.Feature) []model.TraceLink {
	var links []model.TraceLink
	for _, req := range userReqs {
		if req.Kind != model.UserRequirement {
			continue
		}
		for _, parentID := range req.DerivedFrom {
			f, ok := features[parentID]
			if !ok {
				continue
			}
			confidence := f.Confidence
			if confidence > b.cfg.DerivationCap {
				confidence = b.cfg.DerivationCap
			}
			links = append(links, model.TraceLink{
				ID:         b.newID(),
				SourceKind: model.KindFeature,
				SourceID:   f.ID,
				TargetKind: model.KindRequirement,
				TargetID:   req.ID,
				Kind:       model.LinkDerivesTo,
				Confidence: confidence,
				Detail: model.FeatureToRequirement{
					FeatureID:     f.ID,
					RequirementID: req.ID,
				},
			})
		}
	}
	return links
}

// buildRequirementLinks emits user→software requirement links at the fixed
// ExplicitDerivation confidence for every parent id resolving to an
// existing USER requirement
func (b *Builder) buildRequirementLinks(softReqs []model.Requirement, userReqs map[string]model.Requirement) []model.TraceLink {
	var links []model.TraceLink
	for _, req := range softReqs {
		if req.Kind != model.SoftwareRequirement {
			continue
		}
		for _, parentID := range req.DerivedFrom {
			parent, ok := userReqs[parentID]
			if !ok {
				continue
			}
			links = append(links, model.TraceLink{
				ID:         b.newID(),
				SourceKind: model.KindRequirement,
				SourceID:   parent.ID,
				TargetKind: model.KindRequirement,
				TargetID:   req.ID,
				Kind:       model.LinkDerivesTo,
				Confidence: b.cfg.ExplicitDerivation,
				Detail: model.RequirementToRequirement{
					ParentID: parent.ID,
					ChildID:  req.ID,
				},
			})
		}
	}
	return links
}

// buildRiskLinks emits software-requirement→risk links at the fixed
// RiskRelation confidence for every related id resolving to an existing
// SOFTWARE requirement
func (b *Builder) buildRiskLinks(risks []model.RiskItem, softReqs map[string]model.Requirement) []model.TraceLink {
	var links []model.TraceLink
	for _, risk := range risks {
		for _, reqID := range risk.RelatedRequirements {
			req, ok := softReqs[reqID]
			if !ok {
				continue
			}
			links = append(links, model.TraceLink{
				ID:         b.newID(),
				SourceKind: model.KindRequirement,
				SourceID:   req.ID,
				TargetKind: model.KindRisk,
				TargetID:   risk.ID,
				Kind:       model.LinkMitigatedBy,
				Confidence: b.cfg.RiskRelation,
				Detail: model.RequirementToRisk{
					RequirementID: req.ID,
					RiskID:        risk.ID,
				},
			})
		}
	}
	return links
}

// indexTargets builds a source-id → sorted target-id lookup from a link
// slice, deduplicating targets reached through multiple paths
func indexTargets(links []model.TraceLink) map[string][]string {
	index := make(map[string][]string)
	seen := make(map[string]bool)
	for _, l := range links {
		key := l.SourceID + "\x00" + l.TargetID
		if seen[key] {
			continue
		}
		seen[key] = true
		index[l.SourceID] = append(index[l.SourceID], l.TargetID)
	}
	for _, targets := range index {
		sort.Strings(targets)
	}
	return index
}

func countEvidence(features []model.Feature) int {
	n := 0
	for _, f := range features {
		n += len(f.Evidence)
	}
	return n
}
