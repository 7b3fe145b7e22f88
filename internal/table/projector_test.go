package table

import (
	"testing"

	"tmx/internal/config"
	"tmx/internal/matrix"
	"tmx/internal/model"
	"tmx/internal/testutil"
)

func projectFor(in matrix.Input) []model.TableRow {
	b := matrix.NewBuilder(config.DefaultConfig(), testutil.SilentLogger())
	return NewProjector(testutil.SilentLogger()).Project(b.Build(in), in)
}

func TestProjectChainScenario(t *testing.T) {
	rows := projectFor(testutil.ChainInput())

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	var full, truncated *model.TableRow
	for i := range rows {
		if rows[i].FeatureID == "FEAT-1" {
			full = &rows[i]
		} else {
			truncated = &rows[i]
		}
	}
	if full == nil || truncated == nil {
		t.Fatal("expected one row per feature")
	}

	if full.UserRequirementID != "UR-1" || full.SoftwareRequirementID != "SR-1" || full.RiskID != "RISK-1" {
		t.Errorf("complete chain row = %s/%s/%s, want UR-1/SR-1/RISK-1",
			full.UserRequirementID, full.SoftwareRequirementID, full.RiskID)
	}
	if full.RiskHazard != "Over-infusion" {
		t.Errorf("risk hazard = %q, want Over-infusion", full.RiskHazard)
	}

	// FEAT-2 has no requirement link; the row stops at the feature
	if truncated.UserRequirementID != "" || truncated.SoftwareRequirementID != "" || truncated.RiskID != "" {
		t.Errorf("truncated row carries hop ids past the feature: %+v", truncated)
	}
	if truncated.Confidence != 0.7 {
		t.Errorf("truncated row confidence = %v, want the feature's own 0.7", truncated.Confidence)
	}
}

func TestProjectEveryEvidenceAppears(t *testing.T) {
	in := testutil.ChainInput()
	rows := projectFor(in)

	seen := make(map[string]bool)
	for _, row := range rows {
		seen[row.CodeRef.Key()] = true
	}

	for _, f := range in.Features {
		for _, ev := range f.Evidence {
			if !seen[ev.Key()] {
				t.Errorf("evidence %s missing from the table", ev.Key())
			}
		}
	}
}

func TestProjectWeakestLinkConfidence(t *testing.T) {
	in := testutil.ChainInput()
	in.Features = in.Features[:1]
	rows := projectFor(in)

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	// Hops carry 0.85 (code), 0.85 (derivation), 0.95, 0.9; the row takes
	// the minimum
	if rows[0].Confidence != 0.85 {
		t.Errorf("row confidence = %v, want 0.85", rows[0].Confidence)
	}
}

func TestProjectWeakestLinkIsDerivation(t *testing.T) {
	in := testutil.ChainInput()
	in.Features = in.Features[:1]
	in.Features[0].Confidence = 0.95 // derivation hop caps at 0.9

	rows := projectFor(in)

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Confidence != 0.9 {
		t.Errorf("row confidence = %v, want 0.9 (capped derivation hop)", rows[0].Confidence)
	}
}

func TestProjectDeduplicatesCompleteTuples(t *testing.T) {
	in := testutil.ChainInput()
	in.Features = in.Features[:1]
	// Duplicate derivation produces two identical complete chains
	in.UserRequirements[0].DerivedFrom = []string{"FEAT-1", "FEAT-1"}

	rows := projectFor(in)

	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1 (identical tuples collapse)", len(rows))
	}
}

func TestProjectBranchingChains(t *testing.T) {
	in := testutil.ChainInput()
	in.Features = in.Features[:1]
	in.SoftwareRequirements = append(in.SoftwareRequirements, model.Requirement{
		ID:          "SR-2",
		Kind:        model.SoftwareRequirement,
		Text:        "The alarm shall sound on rate limit breach",
		DerivedFrom: []string{"UR-1"},
	})
	in.Risks[0].RelatedRequirements = []string{"SR-1", "SR-2"}

	rows := projectFor(in)

	// One row per software requirement branch
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	branches := map[string]bool{}
	for _, row := range rows {
		branches[row.SoftwareRequirementID] = true
		if row.RiskID != "RISK-1" {
			t.Errorf("branch %s risk = %s, want RISK-1", row.SoftwareRequirementID, row.RiskID)
		}
	}
	if !branches["SR-1"] || !branches["SR-2"] {
		t.Errorf("branches = %v, want SR-1 and SR-2", branches)
	}
}

func TestProjectRoundTripConsistency(t *testing.T) {
	// Every adjacent pair in a row corresponds to a link in the matrix
	in := testutil.ChainInput()
	b := matrix.NewBuilder(config.DefaultConfig(), testutil.SilentLogger())
	m := b.Build(in)
	rows := NewProjector(testutil.SilentLogger()).Project(m, in)

	hasLink := make(map[string]bool)
	for _, l := range m.Links {
		hasLink[l.EndpointKey()] = true
	}
	key := func(sk model.EntityKind, sid string, tk model.EntityKind, tid string) string {
		return (model.TraceLink{SourceKind: sk, SourceID: sid, TargetKind: tk, TargetID: tid}).EndpointKey()
	}

	for _, row := range rows {
		if !hasLink[key(model.KindCode, row.CodeRef.Key(), model.KindFeature, row.FeatureID)] {
			t.Errorf("row pair %s → %s has no backing link", row.CodeRef.Key(), row.FeatureID)
		}
		if row.UserRequirementID != "" && !hasLink[key(model.KindFeature, row.FeatureID, model.KindRequirement, row.UserRequirementID)] {
			t.Errorf("row pair %s → %s has no backing link", row.FeatureID, row.UserRequirementID)
		}
		if row.SoftwareRequirementID != "" && !hasLink[key(model.KindRequirement, row.UserRequirementID, model.KindRequirement, row.SoftwareRequirementID)] {
			t.Errorf("row pair %s → %s has no backing link", row.UserRequirementID, row.SoftwareRequirementID)
		}
		if row.RiskID != "" && !hasLink[key(model.KindRequirement, row.SoftwareRequirementID, model.KindRisk, row.RiskID)] {
			t.Errorf("row pair %s → %s has no backing link", row.SoftwareRequirementID, row.RiskID)
		}
	}
}

func TestProjectEmptyMatrix(t *testing.T) {
	rows := projectFor(testutil.EmptyInput())
	if len(rows) != 0 {
		t.Errorf("empty input produced %d rows", len(rows))
	}
}
