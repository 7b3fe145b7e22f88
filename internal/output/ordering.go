// Package output provides deterministic projection helpers: float rounding
// and the stable sort orderings applied before links, gaps, and rows are
// handed to display or export collaborators.
package output

import (
	"sort"

	"tmx/internal/model"
)

// SortLinks sorts links by sourceKind ASC, sourceId ASC, targetKind ASC,
// targetId ASC, confidence DESC
func SortLinks(links []model.TraceLink) {
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].SourceKind != links[j].SourceKind {
			return links[i].SourceKind < links[j].SourceKind
		}
		if links[i].SourceID != links[j].SourceID {
			return links[i].SourceID < links[j].SourceID
		}
		if links[i].TargetKind != links[j].TargetKind {
			return links[i].TargetKind < links[j].TargetKind
		}
		if links[i].TargetID != links[j].TargetID {
			return links[i].TargetID < links[j].TargetID
		}
		return links[i].Confidence > links[j].Confidence
	})
}

// SeverityRank maps gap severities to sort ranks, most severe first
var SeverityRank = map[string]int{
	model.GapSeverityCritical: 0,
	model.GapSeverityHigh:     1,
	model.GapSeverityMedium:   2,
	model.GapSeverityLow:      3,
}

// SortGaps sorts gaps by severity rank ASC, category ASC, sourceId ASC
func SortGaps(gaps []model.Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		ri, rj := SeverityRank[gaps[i].Severity], SeverityRank[gaps[j].Severity]
		if ri != rj {
			return ri < rj
		}
		if gaps[i].Category != gaps[j].Category {
			return gaps[i].Category < gaps[j].Category
		}
		return gaps[i].SourceID < gaps[j].SourceID
	})
}

// SortRows sorts table rows by featureId ASC, code key ASC, then the
// remaining chain ids ASC
func SortRows(rows []model.TableRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FeatureID != rows[j].FeatureID {
			return rows[i].FeatureID < rows[j].FeatureID
		}
		ki, kj := rows[i].CodeRef.Key(), rows[j].CodeRef.Key()
		if ki != kj {
			return ki < kj
		}
		if rows[i].UserRequirementID != rows[j].UserRequirementID {
			return rows[i].UserRequirementID < rows[j].UserRequirementID
		}
		if rows[i].SoftwareRequirementID != rows[j].SoftwareRequirementID {
			return rows[i].SoftwareRequirementID < rows[j].SoftwareRequirementID
		}
		return rows[i].RiskID < rows[j].RiskID
	})
}
