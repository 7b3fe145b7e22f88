package output

import (
	"testing"

	"tmx/internal/model"
)

func TestSortLinks(t *testing.T) {
	links := []model.TraceLink{
		{SourceKind: model.KindRequirement, SourceID: "UR-1", TargetKind: model.KindRequirement, TargetID: "SR-1", Confidence: 0.95},
		{SourceKind: model.KindCode, SourceID: "b.c:1-2", TargetKind: model.KindFeature, TargetID: "FEAT-1", Confidence: 0.7},
		{SourceKind: model.KindCode, SourceID: "a.c:1-2", TargetKind: model.KindFeature, TargetID: "FEAT-1", Confidence: 0.5},
		{SourceKind: model.KindCode, SourceID: "a.c:1-2", TargetKind: model.KindFeature, TargetID: "FEAT-1", Confidence: 0.9},
	}

	SortLinks(links)

	if links[0].SourceID != "a.c:1-2" || links[0].Confidence != 0.9 {
		t.Errorf("first link = %s conf %v, want a.c:1-2 conf 0.9 (confidence DESC)", links[0].SourceID, links[0].Confidence)
	}
	if links[1].Confidence != 0.5 {
		t.Errorf("second link confidence = %v, want 0.5", links[1].Confidence)
	}
	if links[3].SourceKind != model.KindRequirement {
		t.Errorf("last link kind = %s, want requirement", links[3].SourceKind)
	}
}

func TestSortGaps(t *testing.T) {
	gaps := []model.Gap{
		{Severity: model.GapSeverityLow, Category: model.GapDuplicateLink, SourceID: "a"},
		{Severity: model.GapSeverityHigh, Category: model.GapOrphanedFeature, SourceID: "FEAT-2"},
		{Severity: model.GapSeverityCritical, Category: model.GapMissingLink, SourceID: "RISK-1"},
		{Severity: model.GapSeverityHigh, Category: model.GapBrokenChain, SourceID: "FEAT-1"},
	}

	SortGaps(gaps)

	wantOrder := []string{"RISK-1", "FEAT-1", "FEAT-2", "a"}
	for i, want := range wantOrder {
		if gaps[i].SourceID != want {
			t.Errorf("gap %d = %s, want %s", i, gaps[i].SourceID, want)
		}
	}
}

func TestSortRows(t *testing.T) {
	rows := []model.TableRow{
		{FeatureID: "FEAT-2", CodeRef: model.CodeReference{FilePath: "b.c", StartLine: 1, EndLine: 2}},
		{FeatureID: "FEAT-1", CodeRef: model.CodeReference{FilePath: "b.c", StartLine: 1, EndLine: 2}, UserRequirementID: "UR-2"},
		{FeatureID: "FEAT-1", CodeRef: model.CodeReference{FilePath: "a.c", StartLine: 1, EndLine: 2}},
		{FeatureID: "FEAT-1", CodeRef: model.CodeReference{FilePath: "b.c", StartLine: 1, EndLine: 2}, UserRequirementID: "UR-1"},
	}

	SortRows(rows)

	if rows[0].CodeRef.FilePath != "a.c" {
		t.Errorf("first row file = %s, want a.c", rows[0].CodeRef.FilePath)
	}
	if rows[1].UserRequirementID != "UR-1" || rows[2].UserRequirementID != "UR-2" {
		t.Errorf("chain id tiebreak wrong: %s then %s", rows[1].UserRequirementID, rows[2].UserRequirementID)
	}
	if rows[3].FeatureID != "FEAT-2" {
		t.Errorf("last row feature = %s, want FEAT-2", rows[3].FeatureID)
	}
}
