// Package policy defines the gap severity policy: which risk severities
// demand redundant requirement coverage and how aggregate recommendations
// are triggered. The policy is stored as policy.toml so review teams can
// adjust it without rebuilding.
package policy

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Policy represents a gap severity policy stored in policy.toml
type Policy struct {
	// HighSeverityRisks lists risk severities that require redundant
	// requirement coverage
	HighSeverityRisks []string `toml:"high_severity_risks"`

	// RedundancyMinimum is the minimum number of linked software
	// requirements for a high-severity risk
	RedundancyMinimum int `toml:"redundancy_minimum"`

	// OrphanReviewThreshold is the orphaned-requirement gap count above
	// which a derivation review is recommended
	OrphanReviewThreshold int `toml:"orphan_review_threshold"`

	// SeverityRank orders gap severities for sorting, most severe first
	SeverityRank []string `toml:"severity_rank"`
}

// Default returns the built-in policy
func Default() *Policy {
	return &Policy{
		HighSeverityRisks:     []string{"Serious", "Catastrophic"},
		RedundancyMinimum:     2,
		OrphanReviewThreshold: 5,
		SeverityRank:          []string{"critical", "high", "medium", "low"},
	}
}

// Load reads a policy from a TOML file, falling back to the default for
// any field left unset
func Load(path string) (*Policy, error) {
	p := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return p, nil
	}

	loaded := &Policy{}
	if _, err := toml.DecodeFile(path, loaded); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if len(loaded.HighSeverityRisks) > 0 {
		p.HighSeverityRisks = loaded.HighSeverityRisks
	}
	if loaded.RedundancyMinimum > 0 {
		p.RedundancyMinimum = loaded.RedundancyMinimum
	}
	if loaded.OrphanReviewThreshold > 0 {
		p.OrphanReviewThreshold = loaded.OrphanReviewThreshold
	}
	if len(loaded.SeverityRank) > 0 {
		p.SeverityRank = loaded.SeverityRank
	}

	return p, nil
}

// Save writes the policy to a TOML file
func Save(path string, p *Policy) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create policy file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(p)
}

// RequiresRedundancy reports whether a risk of the given severity needs
// at least RedundancyMinimum linked requirements
func (p *Policy) RequiresRedundancy(severity string) bool {
	for _, s := range p.HighSeverityRisks {
		if s == severity {
			return true
		}
	}
	return false
}

// Rank returns the sort rank of a gap severity (lower is more severe).
// Unknown severities rank last.
func (p *Policy) Rank(severity string) int {
	for i, s := range p.SeverityRank {
		if s == severity {
			return i
		}
	}
	return len(p.SeverityRank)
}
