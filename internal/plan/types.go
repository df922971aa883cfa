package plan

import (
	"cadnorm/internal/diagnostic"
	"cadnorm/internal/mapping"
	"cadnorm/internal/match"
)

// DefaultMinScore is the shipped scored-tier acceptance threshold.
const DefaultMinScore = 3

// Scored-tier weights.
const (
	WeightType     = 5
	WeightCategory = 3
	WeightName     = 2
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// MinScore is the minimum scored-tier total for accepting a column.
	MinScore int
	// MaxSuggestions caps the suggestions reported per unmapped target.
	MaxSuggestions int
	// SuggestionMinScore drops suggestions less similar than this (0-1).
	SuggestionMinScore float64
	// SampleRows limits how many rows are scanned for a column sample.
	SampleRows int
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		MinScore:           DefaultMinScore,
		MaxSuggestions:     3,
		SuggestionMinScore: match.DefaultSuggestionScore,
		SampleRows:         50,
	}
}

// Result is the output of one resolution.
type Result struct {
	// Mapping holds the seed entries plus everything the tiers resolved.
	Mapping *mapping.FieldMapping
	// Unmapped lists targets no tier could resolve, in target order.
	Unmapped []UnmappedField
	// Diagnostics explains each decision.
	Diagnostics diagnostic.Diagnostics
}

// UnmappedField is a target that stayed unresolved.
type UnmappedField struct {
	Target      string               `json:"target"`
	Reason      string               `json:"reason"`
	Suggestions match.SuggestionList `json:"suggestions,omitempty"`
}

// UnmappedTargets returns just the target ids.
func (r *Result) UnmappedTargets() []string {
	out := make([]string, len(r.Unmapped))
	for i, u := range r.Unmapped {
		out[i] = u.Target
	}

	return out
}
