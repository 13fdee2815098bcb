package domain

import "fmt"

// Strategy selects which repair the engine applies.
type Strategy string

const (
	StrategyDeclaration Strategy = "declaration-fix"
	StrategyDictionary  Strategy = "dictionary-repair"
	StrategyContextual  Strategy = "contextual-repair"
)

// ValidStrategies enumerates every strategy the engine understands.
var ValidStrategies = []Strategy{StrategyDeclaration, StrategyDictionary, StrategyContextual}

// ParseStrategy accepts a strategy name or one of the short aliases used
// on the command line (declaration, dictionary, contextual).
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case string(StrategyDeclaration), "declaration":
		return StrategyDeclaration, nil
	case string(StrategyDictionary), "dictionary":
		return StrategyDictionary, nil
	case string(StrategyContextual), "contextual":
		return StrategyContextual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// FixResult records what one repair pass did to one file.
type FixResult struct {
	FileName                 string         `json:"file_name"`
	FilePath                 string         `json:"file_path"`
	Strategies               []Strategy     `json:"strategies"`
	OriginalEncoding         string         `json:"original_encoding,omitempty"`
	NewEncoding              string         `json:"new_encoding,omitempty"`
	Success                  bool           `json:"success"`
	Changed                  bool           `json:"changed"`
	Written                  bool           `json:"written"`
	Message                  string         `json:"message"`
	OriginalReplacementCount int            `json:"original_replacement_count"`
	FinalReplacementCount    int            `json:"final_replacement_count"`
	FixedCount               int            `json:"fixed_count"`
	Substitutions            []Substitution `json:"substitutions,omitempty"`
	NeedsManualReview        bool           `json:"needs_manual_review"`
}

// Substitution counts how often a dictionary entry or context rule fired.
type Substitution struct {
	Strategy    Strategy `json:"strategy"`
	Pattern     string   `json:"pattern"`
	Replacement string   `json:"replacement"`
	Count       int      `json:"count"`
}

// SetCounts fills the replacement counters. The fixed count never goes
// below zero.
func (r *FixResult) SetCounts(original, final int) {
	r.OriginalReplacementCount = original
	r.FinalReplacementCount = final
	r.FixedCount = original - final
	if r.FixedCount < 0 {
		r.FixedCount = 0
	}
}

// FixOptions tunes a fix run.
type FixOptions struct {
	DryRun     bool       `json:"dry_run"`
	Strategies []Strategy `json:"strategies"`
}

// FixReport is the outcome of one fix command over a set of files.
type FixReport struct {
	RunID        string      `json:"run_id"`
	Root         string      `json:"root"`
	DryRun       bool        `json:"dry_run"`
	ManifestPath string      `json:"manifest_path,omitempty"`
	Results      []FixResult `json:"results"`
}

// NeedsReview counts results that failed or still need a human.
func (r *FixReport) NeedsReview() int {
	n := 0
	for _, res := range r.Results {
		if !res.Success || res.NeedsManualReview {
			n++
		}
	}
	return n
}
