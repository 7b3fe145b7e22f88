// Package table flattens a traceability matrix into denormalized rows,
// one per traversable chain, for display and export. Every evidence entry
// appears in the table at least once, even when its chain stops early.
package table

import (
	"fmt"

	"tmx/internal/logging"
	"tmx/internal/matrix"
	"tmx/internal/model"
)

// Projector produces the tabular projection of a matrix
type Projector struct {
	logger *logging.Logger
}

// NewProjector creates a table projector
func NewProjector(logger *logging.Logger) *Projector {
	return &Projector{logger: logger}
}

// hop indices built once per projection
type chainIndex struct {
	featureToUser map[string][]model.TraceLink
	userToSoft    map[string][]model.TraceLink
	softToRisk    map[string][]model.TraceLink

	userText map[string]string
	softText map[string]string
	riskText map[string]string
}

func buildChainIndex(m *model.TraceabilityMatrix, in matrix.Input) *chainIndex {
	idx := &chainIndex{
		featureToUser: make(map[string][]model.TraceLink),
		userToSoft:    make(map[string][]model.TraceLink),
		softToRisk:    make(map[string][]model.TraceLink),
		userText:      make(map[string]string, len(in.UserRequirements)),
		softText:      make(map[string]string, len(in.SoftwareRequirements)),
		riskText:      make(map[string]string, len(in.Risks)),
	}

	for _, l := range m.Links {
		switch {
		case l.SourceKind == model.KindFeature && l.TargetKind == model.KindRequirement:
			idx.featureToUser[l.SourceID] = append(idx.featureToUser[l.SourceID], l)
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRequirement:
			idx.userToSoft[l.SourceID] = append(idx.userToSoft[l.SourceID], l)
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRisk:
			idx.softToRisk[l.SourceID] = append(idx.softToRisk[l.SourceID], l)
		}
	}

	for _, r := range in.UserRequirements {
		idx.userText[r.ID] = r.Text
	}
	for _, r := range in.SoftwareRequirements {
		idx.softText[r.ID] = r.Text
	}
	for _, r := range in.Risks {
		idx.riskText[r.ID] = r.Hazard
	}

	return idx
}

// Project emits one row per traversable chain starting from each
// (feature, evidence) pair. A hop with no outgoing edge truncates the row,
// leaving the remaining fields empty. Row confidence is the minimum across
// all traversed hops. A composite key over the five endpoint identifiers
// prevents emitting the same complete tuple twice.
func (p *Projector) Project(m *model.TraceabilityMatrix, in matrix.Input) []model.TableRow {
	idx := buildChainIndex(m, in)
	seen := make(map[string]bool)

	var rows []model.TableRow
	for _, f := range in.Features {
		for _, ev := range f.Evidence {
			rows = append(rows, p.walkFeature(f, ev, idx, seen)...)
		}
	}

	p.logger.Debug("Table projected", map[string]interface{}{
		"analysisId": m.AnalysisID,
		"rows":       len(rows),
	})

	return rows
}

func (p *Projector) walkFeature(f model.Feature, ev model.CodeReference, idx *chainIndex, seen map[string]bool) []model.TableRow {
	base := model.TableRow{
		CodeRef:            ev,
		FeatureID:          f.ID,
		FeatureDescription: f.Description,
		Confidence:         f.Confidence,
	}

	userHops := idx.featureToUser[f.ID]
	if len(userHops) == 0 {
		return []model.TableRow{base}
	}

	var rows []model.TableRow
	for _, userHop := range userHops {
		row := base
		row.UserRequirementID = userHop.TargetID
		row.UserRequirementText = idx.userText[userHop.TargetID]
		row.Confidence = minConfidence(row.Confidence, userHop.Confidence)

		softHops := idx.userToSoft[userHop.TargetID]
		if len(softHops) == 0 {
			rows = append(rows, row)
			continue
		}

		for _, softHop := range softHops {
			softRow := row
			softRow.SoftwareRequirementID = softHop.TargetID
			softRow.SoftwareRequirement = idx.softText[softHop.TargetID]
			softRow.Confidence = minConfidence(softRow.Confidence, softHop.Confidence)

			riskHops := idx.softToRisk[softHop.TargetID]
			if len(riskHops) == 0 {
				rows = append(rows, softRow)
				continue
			}

			for _, riskHop := range riskHops {
				fullRow := softRow
				fullRow.RiskID = riskHop.TargetID
				fullRow.RiskHazard = idx.riskText[riskHop.TargetID]
				fullRow.Confidence = minConfidence(fullRow.Confidence, riskHop.Confidence)

				key := rowKey(fullRow)
				if seen[key] {
					continue
				}
				seen[key] = true
				rows = append(rows, fullRow)
			}
		}
	}

	return rows
}

// rowKey is the composite identity of a complete chain tuple
func rowKey(row model.TableRow) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		row.CodeRef.Key(), row.FeatureID, row.UserRequirementID, row.SoftwareRequirementID, row.RiskID)
}

func minConfidence(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
