package matrix_test

import (
	"testing"

	"tmx/internal/config"
	"tmx/internal/matrix"
	"tmx/internal/model"
	"tmx/internal/testutil"
)

func newBuilder() *matrix.Builder {
	return matrix.NewBuilder(config.DefaultConfig(), testutil.SilentLogger())
}

func countByKind(links []model.TraceLink, source, target model.EntityKind) int {
	n := 0
	for _, l := range links {
		if l.SourceKind == source && l.TargetKind == target {
			n++
		}
	}
	return n
}

func TestBuildSingleHopLinks(t *testing.T) {
	m := newBuilder().Build(testutil.ChainInput())

	tests := []struct {
		name   string
		source model.EntityKind
		target model.EntityKind
		want   int
	}{
		{"code to feature", model.KindCode, model.KindFeature, 2},
		{"feature to requirement", model.KindFeature, model.KindRequirement, 1},
		{"requirement to risk", model.KindRequirement, model.KindRisk, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := countByKind(m.Links, tt.source, tt.target)
			if got != tt.want {
				t.Errorf("got %d links, want %d", got, tt.want)
			}
		})
	}

	// requirement→requirement plus transitive code→requirement
	reqLinks := countByKind(m.Links, model.KindRequirement, model.KindRequirement)
	if reqLinks != 1 {
		t.Errorf("got %d user→software links, want 1", reqLinks)
	}
}

func TestBuildConfidenceRules(t *testing.T) {
	in := testutil.ChainInput()
	m := newBuilder().Build(in)

	for _, l := range m.Links {
		if l.Confidence < 0 || l.Confidence > 1 {
			t.Errorf("link %s → %s confidence %v outside [0,1]", l.SourceID, l.TargetID, l.Confidence)
		}

		switch {
		case l.SourceKind == model.KindCode && l.TargetKind == model.KindFeature:
			want := featureConfidence(in, l.TargetID)
			if l.Confidence != want {
				t.Errorf("code→feature confidence = %v, want %v", l.Confidence, want)
			}
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRequirement:
			if l.Confidence != 0.95 {
				t.Errorf("user→software confidence = %v, want 0.95", l.Confidence)
			}
		case l.SourceKind == model.KindRequirement && l.TargetKind == model.KindRisk:
			if l.Confidence != 0.9 {
				t.Errorf("requirement→risk confidence = %v, want 0.9", l.Confidence)
			}
		}
	}
}

func featureConfidence(in matrix.Input, featureID string) float64 {
	for _, f := range in.Features {
		if f.ID == featureID {
			return f.Confidence
		}
	}
	return -1
}

func TestBuildDerivationCap(t *testing.T) {
	in := testutil.ChainInput()
	in.Features[0].Confidence = 0.99 // above the 0.9 cap

	m := newBuilder().Build(in)

	for _, l := range m.Links {
		if l.SourceKind == model.KindFeature && l.TargetKind == model.KindRequirement {
			if l.Confidence != 0.9 {
				t.Errorf("feature→requirement confidence = %v, want capped 0.9", l.Confidence)
			}
		}
	}
}

func TestBuildTransitiveDiscount(t *testing.T) {
	in := testutil.ChainInput()
	m := newBuilder().Build(in)

	transitive := 0
	for _, l := range m.Links {
		if l.SourceKind != model.KindCode || l.TargetKind != model.KindRequirement {
			continue
		}
		transitive++

		detail, ok := l.Detail.(model.CodeToRequirement)
		if !ok {
			t.Fatalf("transitive link detail has type %T", l.Detail)
		}
		want := featureConfidence(in, detail.FeatureID) * 0.8
		if l.Confidence != want {
			t.Errorf("transitive confidence = %v, want %v (feature confidence × 0.8)", l.Confidence, want)
		}
	}

	if transitive != 1 {
		t.Errorf("got %d transitive links, want 1", transitive)
	}
	if m.Summary.TransitiveLinks != transitive {
		t.Errorf("summary reports %d transitive links, want %d", m.Summary.TransitiveLinks, transitive)
	}
}

func TestBuildDropsUnresolvedIDs(t *testing.T) {
	in := testutil.ChainInput()
	in.UserRequirements[0].DerivedFrom = append(in.UserRequirements[0].DerivedFrom, "FEAT-MISSING")
	in.SoftwareRequirements[0].DerivedFrom = append(in.SoftwareRequirements[0].DerivedFrom, "UR-MISSING")
	in.Risks[0].RelatedRequirements = append(in.Risks[0].RelatedRequirements, "SR-MISSING")

	m := newBuilder().Build(in)

	// No link may reference an id absent from the input
	for _, l := range m.Links {
		for _, id := range []string{l.SourceID, l.TargetID} {
			if id == "FEAT-MISSING" || id == "UR-MISSING" || id == "SR-MISSING" {
				t.Errorf("link references unresolved id %s", id)
			}
		}
	}

	// Counts match the fully resolved input
	base := newBuilder().Build(testutil.ChainInput())
	if len(m.Links) != len(base.Links) {
		t.Errorf("unresolved ids changed link count: got %d, want %d", len(m.Links), len(base.Links))
	}
}

func TestBuildNoDeduplication(t *testing.T) {
	in := testutil.ChainInput()
	// Same parent twice yields two structurally identical links; dedup is
	// the gap analyzer's job
	in.UserRequirements[0].DerivedFrom = []string{"FEAT-1", "FEAT-1"}

	m := newBuilder().Build(in)

	got := countByKind(m.Links, model.KindFeature, model.KindRequirement)
	if got != 2 {
		t.Errorf("got %d feature→requirement links, want 2 (no dedup in builder)", got)
	}
}

func TestBuildDeterministic(t *testing.T) {
	in := testutil.ChainInput()
	b := newBuilder()

	m1 := b.Build(in)
	m2 := b.Build(in)

	if len(m1.Links) != len(m2.Links) {
		t.Fatalf("link counts differ: %d vs %d", len(m1.Links), len(m2.Links))
	}
	for i := range m1.Links {
		if m1.Links[i].Confidence != m2.Links[i].Confidence {
			t.Errorf("link %d confidence differs: %v vs %v", i, m1.Links[i].Confidence, m2.Links[i].Confidence)
		}
		if m1.Links[i].EndpointKey() != m2.Links[i].EndpointKey() {
			t.Errorf("link %d endpoints differ", i)
		}
	}
}

func TestBuildLookupMaps(t *testing.T) {
	m := newBuilder().Build(testutil.ChainInput())

	codeKey := "pump/rate.c:10-42"
	if got := m.CodeToRequirements[codeKey]; len(got) != 1 || got[0] != "SR-1" {
		t.Errorf("CodeToRequirements[%s] = %v, want [SR-1]", codeKey, got)
	}
	if got := m.UserToSoftware["UR-1"]; len(got) != 1 || got[0] != "SR-1" {
		t.Errorf("UserToSoftware[UR-1] = %v, want [SR-1]", got)
	}
	if got := m.RequirementToRisks["SR-1"]; len(got) != 1 || got[0] != "RISK-1" {
		t.Errorf("RequirementToRisks[SR-1] = %v, want [RISK-1]", got)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	m := newBuilder().Build(testutil.EmptyInput())

	if len(m.Links) != 0 {
		t.Errorf("empty input produced %d links", len(m.Links))
	}
	if m.Summary.Links != 0 || m.Summary.EvidenceEntries != 0 {
		t.Errorf("empty input summary not zeroed: %+v", m.Summary)
	}
}

func TestBuildSkipsWrongKind(t *testing.T) {
	in := testutil.ChainInput()
	// A software requirement smuggled into the user collection is skipped
	in.UserRequirements = append(in.UserRequirements, model.Requirement{
		ID:          "SR-STRAY",
		Kind:        model.SoftwareRequirement,
		DerivedFrom: []string{"FEAT-1"},
	})

	m := newBuilder().Build(in)

	for _, l := range m.Links {
		if l.SourceID == "SR-STRAY" || l.TargetID == "SR-STRAY" {
			t.Errorf("stray-kind requirement was linked: %s → %s", l.SourceID, l.TargetID)
		}
	}
}
