// Package snapshot loads the immutable entity snapshot a matrix is built
// from: features with evidence, requirements partitioned by kind, and
// risks with their related requirement ids. Snapshots are produced by
// upstream extractors; this package only parses and shape-checks them.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tmx/internal/errors"
	"tmx/internal/matrix"
	"tmx/internal/model"
)

// Snapshot is one analysis run's input, as read from disk
type Snapshot struct {
	AnalysisID           string              `json:"analysisId" yaml:"analysisId"`
	Features             []model.Feature     `json:"features" yaml:"features"`
	UserRequirements     []model.Requirement `json:"userRequirements" yaml:"userRequirements"`
	SoftwareRequirements []model.Requirement `json:"softwareRequirements" yaml:"softwareRequirements"`
	Risks                []model.RiskItem    `json:"risks" yaml:"risks"`
}

// Input converts the snapshot into the builder's input form
func (s *Snapshot) Input() matrix.Input {
	return matrix.Input{
		AnalysisID:           s.AnalysisID,
		Features:             s.Features,
		UserRequirements:     s.UserRequirements,
		SoftwareRequirements: s.SoftwareRequirements,
		Risks:                s.Risks,
	}
}

// Load reads a snapshot file, selecting the parser by extension
// (.yaml/.yml or .json)
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.SnapshotMissing, fmt.Sprintf("snapshot file %s not found", path), err)
		}
		return nil, errors.New(errors.SnapshotInvalid, "failed to read snapshot", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, errors.New(errors.SnapshotUnsupported,
			fmt.Sprintf("unsupported snapshot format %q", filepath.Ext(path)), nil)
	}
}

func parseYAML(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.New(errors.SnapshotInvalid, "failed to parse YAML snapshot", err)
	}
	return &s, nil
}

func parseJSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.New(errors.SnapshotInvalid, "failed to parse JSON snapshot", err)
	}
	return &s, nil
}

// Validate returns an ordered list of shape issues. Referential problems
// (dangling derivation or relation ids) are deliberately NOT reported
// here: the matrix builder drops them and the gap analyzer surfaces them.
func (s *Snapshot) Validate() []string {
	var issues []string

	if s.AnalysisID == "" {
		issues = append(issues, "snapshot has no analysisId")
	}

	seenFeatures := make(map[string]bool, len(s.Features))
	for i, f := range s.Features {
		if f.ID == "" {
			issues = append(issues, fmt.Sprintf("feature at index %d has no id", i))
			continue
		}
		if seenFeatures[f.ID] {
			issues = append(issues, fmt.Sprintf("duplicate feature id %s", f.ID))
		}
		seenFeatures[f.ID] = true
		if f.Confidence < 0 || f.Confidence > 1 {
			issues = append(issues, fmt.Sprintf("feature %s confidence %.2f is outside [0,1]", f.ID, f.Confidence))
		}
		for j, ev := range f.Evidence {
			if ev.FilePath == "" {
				issues = append(issues, fmt.Sprintf("feature %s evidence at index %d has no file path", f.ID, j))
			}
			if ev.EndLine < ev.StartLine {
				issues = append(issues, fmt.Sprintf("feature %s evidence %s has an inverted line range", f.ID, ev.Key()))
			}
		}
	}

	issues = append(issues, validateRequirements(s.UserRequirements, model.UserRequirement)...)
	issues = append(issues, validateRequirements(s.SoftwareRequirements, model.SoftwareRequirement)...)

	seenRisks := make(map[string]bool, len(s.Risks))
	for i, r := range s.Risks {
		if r.ID == "" {
			issues = append(issues, fmt.Sprintf("risk at index %d has no id", i))
			continue
		}
		if seenRisks[r.ID] {
			issues = append(issues, fmt.Sprintf("duplicate risk id %s", r.ID))
		}
		seenRisks[r.ID] = true
		if r.Severity == "" {
			issues = append(issues, fmt.Sprintf("risk %s has no severity", r.ID))
		}
	}

	return issues
}

func validateRequirements(reqs []model.Requirement, want model.RequirementKind) []string {
	var issues []string
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		if r.ID == "" {
			issues = append(issues, fmt.Sprintf("%s requirement at index %d has no id", strings.ToLower(string(want)), i))
			continue
		}
		if seen[r.ID] {
			issues = append(issues, fmt.Sprintf("duplicate requirement id %s", r.ID))
		}
		seen[r.ID] = true
		if r.Kind != want {
			issues = append(issues, fmt.Sprintf("requirement %s has kind %q, expected %q", r.ID, r.Kind, want))
		}
	}
	return issues
}

// Save writes a snapshot as YAML; used by tmx init to produce a starter
// file
func Save(path string, s *Snapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.New(errors.InternalError, "failed to marshal snapshot", err)
	}
	return os.WriteFile(path, data, 0644)
}
