package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tmx/internal/errors"
	"tmx/internal/model"
)

const yamlSnapshot = `analysisId: run-001
features:
  - id: FEAT-1
    description: Infusion rate limiting
    confidence: 0.85
    evidence:
      - filePath: pump/rate.c
        startLine: 10
        endLine: 42
        function: clamp_rate
userRequirements:
  - id: UR-1
    kind: USER
    text: The pump shall limit infusion rate to the prescribed maximum
    derivedFrom: [FEAT-1]
softwareRequirements:
  - id: SR-1
    kind: SOFTWARE
    text: The rate controller shall clamp commanded rate to the ceiling
    derivedFrom: [UR-1]
risks:
  - id: RISK-1
    hazard: Over-infusion
    severity: Serious
    relatedRequirements: [SR-1]
`

const jsonSnapshot = `{
  "analysisId": "run-001",
  "features": [
    {
      "id": "FEAT-1",
      "description": "Infusion rate limiting",
      "confidence": 0.85,
      "evidence": [
        {"filePath": "pump/rate.c", "startLine": 10, "endLine": 42, "function": "clamp_rate"}
      ]
    }
  ],
  "userRequirements": [
    {"id": "UR-1", "kind": "USER", "text": "Limit infusion rate", "derivedFrom": ["FEAT-1"]}
  ],
  "softwareRequirements": [
    {"id": "SR-1", "kind": "SOFTWARE", "text": "Clamp commanded rate", "derivedFrom": ["UR-1"]}
  ],
  "risks": [
    {"id": "RISK-1", "hazard": "Over-infusion", "severity": "Serious", "relatedRequirements": ["SR-1"]}
  ]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkSnapshot(t *testing.T, s *Snapshot) {
	t.Helper()
	if s.AnalysisID != "run-001" {
		t.Errorf("analysisId = %s, want run-001", s.AnalysisID)
	}
	if len(s.Features) != 1 || s.Features[0].ID != "FEAT-1" {
		t.Fatalf("features = %+v, want one FEAT-1", s.Features)
	}
	if s.Features[0].Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", s.Features[0].Confidence)
	}
	if got := s.Features[0].Evidence[0].Key(); got != "pump/rate.c:10-42" {
		t.Errorf("evidence key = %s, want pump/rate.c:10-42", got)
	}
	if s.UserRequirements[0].Kind != model.UserRequirement {
		t.Errorf("user requirement kind = %s", s.UserRequirements[0].Kind)
	}
	if s.Risks[0].Severity != model.SeveritySerious {
		t.Errorf("risk severity = %s", s.Risks[0].Severity)
	}
}

func TestLoadByExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "snapshot.yaml", yamlSnapshot},
		{"yml", "snapshot.yml", yamlSnapshot},
		{"json", "snapshot.json", jsonSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(writeTemp(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			checkSnapshot(t, s)

			if issues := s.Validate(); len(issues) != 0 {
				t.Errorf("valid snapshot reported issues: %v", issues)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     func(t *testing.T) string
		wantCode errors.ErrorCode
	}{
		{
			"missing file",
			func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
			errors.SnapshotMissing,
		},
		{
			"unsupported extension",
			func(t *testing.T) string { return writeTemp(t, "snapshot.toml", "analysisId = 'x'") },
			errors.SnapshotUnsupported,
		},
		{
			"malformed yaml",
			func(t *testing.T) string { return writeTemp(t, "snapshot.yaml", "analysisId: [unclosed") },
			errors.SnapshotInvalid,
		},
		{
			"malformed json",
			func(t *testing.T) string { return writeTemp(t, "snapshot.json", "{\"analysisId\":") },
			errors.SnapshotInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			if err == nil {
				t.Fatal("expected an error")
			}
			te, ok := err.(*errors.TmxError)
			if !ok {
				t.Fatalf("error has type %T, want *TmxError", err)
			}
			if te.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", te.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateIssues(t *testing.T) {
	s := &Snapshot{
		Features: []model.Feature{
			{ID: "FEAT-1", Confidence: 1.2, Evidence: []model.CodeReference{
				{FilePath: "pump/rate.c", StartLine: 50, EndLine: 10},
			}},
			{ID: "FEAT-1", Confidence: 0.5},
			{Confidence: 0.5},
		},
		UserRequirements: []model.Requirement{
			{ID: "UR-1", Kind: model.SoftwareRequirement},
		},
		Risks: []model.RiskItem{
			{ID: "RISK-1"},
		},
	}

	issues := s.Validate()

	wantFragments := []string{
		"no analysisId",
		"confidence 1.20 is outside",
		"inverted line range",
		"duplicate feature id FEAT-1",
		"has no id",
		`kind "SOFTWARE", expected "USER"`,
		"has no severity",
	}
	for _, want := range wantFragments {
		found := false
		for _, issue := range issues {
			if strings.Contains(issue, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no issue containing %q in %v", want, issues)
		}
	}
}

func TestValidateDanglingRefsNotReported(t *testing.T) {
	// Dangling derivation ids become gaps, never validation issues
	s := &Snapshot{
		AnalysisID: "run-001",
		UserRequirements: []model.Requirement{
			{ID: "UR-1", Kind: model.UserRequirement, DerivedFrom: []string{"FEAT-ABSENT"}},
		},
	}

	if issues := s.Validate(); len(issues) != 0 {
		t.Errorf("dangling reference reported as validation issue: %v", issues)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	original := &Snapshot{
		AnalysisID: "run-rt",
		Features: []model.Feature{
			{ID: "FEAT-1", Description: "Rate limiting", Confidence: 0.85},
		},
	}

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.AnalysisID != original.AnalysisID {
		t.Errorf("analysisId = %s, want %s", loaded.AnalysisID, original.AnalysisID)
	}
	if len(loaded.Features) != 1 || loaded.Features[0].Confidence != 0.85 {
		t.Errorf("features did not survive the round trip: %+v", loaded.Features)
	}
}

func TestInputConversion(t *testing.T) {
	s := &Snapshot{AnalysisID: "run-001", Features: []model.Feature{{ID: "FEAT-1"}}}
	in := s.Input()
	if in.AnalysisID != "run-001" || len(in.Features) != 1 {
		t.Errorf("Input() = %+v", in)
	}
}
