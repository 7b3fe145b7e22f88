// Package model defines the entities and links that make up a traceability
// matrix: code evidence, features, requirements, risks, and the directed
// links between them.
package model

import (
	"fmt"
	"time"
)

// EntityKind identifies the kind of a link endpoint
type EntityKind string

const (
	// KindCode is a source-code evidence entry
	KindCode EntityKind = "code"
	// KindFeature is an implemented feature
	KindFeature EntityKind = "feature"
	// KindRequirement is a user or software requirement
	KindRequirement EntityKind = "requirement"
	// KindRisk is a hazard/risk item
	KindRisk EntityKind = "risk"
)

// RequirementKind distinguishes user-level from software-level requirements
type RequirementKind string

const (
	// UserRequirement captures a user need
	UserRequirement RequirementKind = "USER"
	// SoftwareRequirement is derived from user requirements
	SoftwareRequirement RequirementKind = "SOFTWARE"
)

// LinkKind identifies the semantic of a traceability link
type LinkKind string

const (
	// LinkImplements connects code evidence to a feature, or code to a
	// software requirement when transitively composed
	LinkImplements LinkKind = "implements"
	// LinkDerivesTo connects a feature to a user requirement or a user
	// requirement to a software requirement
	LinkDerivesTo LinkKind = "derives_to"
	// LinkMitigatedBy connects a software requirement to a risk it mitigates
	LinkMitigatedBy LinkKind = "mitigated_by"
)

// RiskSeverity levels, ordered from least to most severe
const (
	SeverityNegligible   = "Negligible"
	SeverityMinor        = "Minor"
	SeveritySerious      = "Serious"
	SeverityCatastrophic = "Catastrophic"
)

// CodeReference points at a region of source code that implements behavior.
// Identity is the composite of file path and line range; references are
// produced upstream and never modified here.
type CodeReference struct {
	FilePath  string `json:"filePath" yaml:"filePath"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
	Function  string `json:"function,omitempty" yaml:"function,omitempty"`
	Context   string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Key returns the identity of the reference (file path plus line range)
func (c CodeReference) Key() string {
	return fmt.Sprintf("%s:%d-%d", c.FilePath, c.StartLine, c.EndLine)
}

// Feature is an implemented behavior extracted from source code
type Feature struct {
	ID          string          `json:"id" yaml:"id"`
	Description string          `json:"description" yaml:"description"`
	Confidence  float64         `json:"confidence" yaml:"confidence"` // 0-1
	Evidence    []CodeReference `json:"evidence" yaml:"evidence"`
	Category    string          `json:"category,omitempty" yaml:"category,omitempty"`
}

// Requirement is a declared product requirement, user- or software-level
type Requirement struct {
	ID                 string            `json:"id" yaml:"id"`
	Kind               RequirementKind   `json:"kind" yaml:"kind"`
	Text               string            `json:"text" yaml:"text"`
	AcceptanceCriteria []string          `json:"acceptanceCriteria,omitempty" yaml:"acceptanceCriteria,omitempty"`
	DerivedFrom        []string          `json:"derivedFrom,omitempty" yaml:"derivedFrom,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// RiskItem is a hazard with its mitigation and verification context
type RiskItem struct {
	ID                  string   `json:"id" yaml:"id"`
	Hazard              string   `json:"hazard" yaml:"hazard"`
	Cause               string   `json:"cause,omitempty" yaml:"cause,omitempty"`
	Effect              string   `json:"effect,omitempty" yaml:"effect,omitempty"`
	Severity            string   `json:"severity" yaml:"severity"`
	Probability         string   `json:"probability,omitempty" yaml:"probability,omitempty"`
	RiskLevel           string   `json:"riskLevel,omitempty" yaml:"riskLevel,omitempty"`
	Mitigation          string   `json:"mitigation,omitempty" yaml:"mitigation,omitempty"`
	Verification        string   `json:"verification,omitempty" yaml:"verification,omitempty"`
	RelatedRequirements []string `json:"relatedRequirements,omitempty" yaml:"relatedRequirements,omitempty"`
}

// IsHighSeverity reports whether the risk demands redundant requirement
// coverage under the default policy
func (r RiskItem) IsHighSeverity() bool {
	return r.Severity == SeveritySerious || r.Severity == SeverityCatastrophic
}

// LinkDetail carries the strongly typed fields of one link variant.
// Exactly one variant exists per hop kind, replacing the loosely typed
// metadata bag the analyzer and builder would otherwise have to agree on.
type LinkDetail interface {
	// Variant returns a stable name for the link variant
	Variant() string
}

// CodeToFeature is the detail of a code→feature link
type CodeToFeature struct {
	FilePath  string `json:"filePath"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Function  string `json:"function,omitempty"`
	FeatureID string `json:"featureId"`
}

// Variant implements LinkDetail
func (CodeToFeature) Variant() string { return "code_to_feature" }

// FeatureToRequirement is the detail of a feature→user-requirement link
type FeatureToRequirement struct {
	FeatureID     string `json:"featureId"`
	RequirementID string `json:"requirementId"`
}

// Variant implements LinkDetail
func (FeatureToRequirement) Variant() string { return "feature_to_requirement" }

// RequirementToRequirement is the detail of a user→software requirement link
type RequirementToRequirement struct {
	ParentID string `json:"parentId"`
	ChildID  string `json:"childId"`
}

// Variant implements LinkDetail
func (RequirementToRequirement) Variant() string { return "requirement_to_requirement" }

// RequirementToRisk is the detail of a software-requirement→risk link
type RequirementToRisk struct {
	RequirementID string `json:"requirementId"`
	RiskID        string `json:"riskId"`
}

// Variant implements LinkDetail
func (RequirementToRisk) Variant() string { return "requirement_to_risk" }

// CodeToRequirement is the detail of a transitively composed
// code→software-requirement link, recording the intermediate hops
type CodeToRequirement struct {
	FilePath          string `json:"filePath"`
	StartLine         int    `json:"startLine"`
	EndLine           int    `json:"endLine"`
	FeatureID         string `json:"featureId"`
	UserRequirementID string `json:"userRequirementId"`
	RequirementID     string `json:"requirementId"`
}

// Variant implements LinkDetail
func (CodeToRequirement) Variant() string { return "code_to_requirement" }

// TraceLink is a directed edge in the traceability graph. Links are
// immutable after creation.
type TraceLink struct {
	ID         string     `json:"id"`
	SourceKind EntityKind `json:"sourceKind"`
	SourceID   string     `json:"sourceId"`
	TargetKind EntityKind `json:"targetKind"`
	TargetID   string     `json:"targetId"`
	Kind       LinkKind   `json:"kind"`
	Confidence float64    `json:"confidence"` // 0-1
	Detail     LinkDetail `json:"detail,omitempty"`
}

// EndpointKey returns the four-field endpoint signature used for duplicate
// detection. Confidence is deliberately excluded.
func (l TraceLink) EndpointKey() string {
	return fmt.Sprintf("%s|%s|%s|%s", l.SourceKind, l.SourceID, l.TargetKind, l.TargetID)
}

// MatrixSummary holds aggregate counts for a built matrix
type MatrixSummary struct {
	Features             int `json:"features"`
	UserRequirements     int `json:"userRequirements"`
	SoftwareRequirements int `json:"softwareRequirements"`
	Risks                int `json:"risks"`
	EvidenceEntries      int `json:"evidenceEntries"`
	Links                int `json:"links"`
	TransitiveLinks      int `json:"transitiveLinks"`
}

// TraceabilityMatrix is the fully composed link graph for one analysis run.
// Treated as an immutable value once returned by the builder.
type TraceabilityMatrix struct {
	AnalysisID string      `json:"analysisId"`
	Links      []TraceLink `json:"links"`

	// Derived lookups, keyed by source id (code reference key for
	// CodeToRequirements), each value sorted ascending.
	CodeToRequirements map[string][]string `json:"codeToRequirements"`
	UserToSoftware     map[string][]string `json:"userToSoftware"`
	RequirementToRisks map[string][]string `json:"requirementToRisks"`

	Summary   MatrixSummary `json:"summary"`
	CreatedAt time.Time     `json:"createdAt"`
}

// GapCategory classifies a structural weakness in the matrix
type GapCategory string

const (
	GapOrphanedCode        GapCategory = "orphaned_code"
	GapOrphanedFeature     GapCategory = "orphaned_feature"
	GapOrphanedRequirement GapCategory = "orphaned_requirement"
	GapOrphanedRisk        GapCategory = "orphaned_risk"
	GapMissingLink         GapCategory = "missing_link"
	GapWeakLink            GapCategory = "weak_link"
	GapBrokenChain         GapCategory = "broken_chain"
	GapDuplicateLink       GapCategory = "duplicate_link"
)

// Gap severity levels
const (
	GapSeverityLow      = "low"
	GapSeverityMedium   = "medium"
	GapSeverityHigh     = "high"
	GapSeverityCritical = "critical"
)

// Gap describes one detected structural weakness
type Gap struct {
	Category       GapCategory `json:"category"`
	SourceKind     EntityKind  `json:"sourceKind"`
	SourceID       string      `json:"sourceId"`
	TargetKind     EntityKind  `json:"targetKind,omitempty"`
	TargetID       string      `json:"targetId,omitempty"`
	Description    string      `json:"description"`
	Severity       string      `json:"severity"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// TableRow is one denormalized code→feature→user-requirement→software-
// requirement→risk path. Hops past the last reachable entity are empty.
type TableRow struct {
	CodeRef               CodeReference `json:"codeRef"`
	FeatureID             string        `json:"featureId"`
	FeatureDescription    string        `json:"featureDescription,omitempty"`
	UserRequirementID     string        `json:"userRequirementId,omitempty"`
	UserRequirementText   string        `json:"userRequirementText,omitempty"`
	SoftwareRequirementID string        `json:"softwareRequirementId,omitempty"`
	SoftwareRequirement   string        `json:"softwareRequirementText,omitempty"`
	RiskID                string        `json:"riskId,omitempty"`
	RiskHazard            string        `json:"riskHazard,omitempty"`
	Confidence            float64       `json:"confidence"`
}
