package matrix_test

import (
	"strings"
	"testing"

	"tmx/internal/config"
	"tmx/internal/matrix"
	"tmx/internal/model"
	"tmx/internal/testutil"
)

func TestValidateCompleteMatrix(t *testing.T) {
	m := newBuilder().Build(testutil.ChainInput())

	issues := matrix.Validate(m, config.DefaultConfig().Thresholds)
	if len(issues) != 0 {
		t.Errorf("complete matrix reported issues: %v", issues)
	}
}

func TestValidateEmptyMatrix(t *testing.T) {
	m := newBuilder().Build(testutil.EmptyInput())

	issues := matrix.Validate(m, config.DefaultConfig().Thresholds)

	wantFragments := []string{
		"no code-to-feature links",
		"no requirement links",
		`link kind "implements" is missing`,
		`link kind "derives_to" is missing`,
		`link kind "mitigated_by" is missing`,
	}
	for _, want := range wantFragments {
		if !containsIssue(issues, want) {
			t.Errorf("no issue containing %q in %v", want, issues)
		}
	}
}

func TestValidateSubThresholdLinks(t *testing.T) {
	in := testutil.ChainInput()
	in.Features[1].Confidence = 0.2 // the orphan feature's code link drops below 0.5

	m := newBuilder().Build(in)
	issues := matrix.Validate(m, config.DefaultConfig().Thresholds)

	if !containsIssue(issues, "below the 0.50 confidence threshold") {
		t.Errorf("no sub-threshold issue in %v", issues)
	}
}

func TestValidateDominantKind(t *testing.T) {
	// Twelve links of one kind and nothing else
	m := &model.TraceabilityMatrix{AnalysisID: "run-dom"}
	for i := 0; i < 12; i++ {
		m.Links = append(m.Links, model.TraceLink{
			SourceKind: model.KindCode,
			SourceID:   "a.c:1-2",
			TargetKind: model.KindFeature,
			TargetID:   "FEAT-1",
			Kind:       model.LinkImplements,
			Confidence: 0.9,
		})
	}

	issues := matrix.Validate(m, config.DefaultConfig().Thresholds)

	if !containsIssue(issues, `"implements" accounts for more than 90%`) {
		t.Errorf("no dominance issue in %v", issues)
	}
}

func containsIssue(issues []string, fragment string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, fragment) {
			return true
		}
	}
	return false
}
