package ir

import "sort"

// RuleKey is the canonical identity triple shared by declared constraints
// and extracted rules. Two rules with the same key after normalization are
// semantic duplicates and must be merged.
type RuleKey struct {
	Entity string         `json:"entity"`
	Field  string         `json:"field"`
	Kind   ConstraintKind `json:"kind"`
}

// NormalizedRule is a canonicalized, deduplicated fact extracted from
// generated code, comparable against IR constraints.
//
// Immutable once emitted. Sources records which extractors produced the
// underlying raw rules; it exists for provenance and dedup, never for
// domain logic.
type NormalizedRule struct {
	Entity      string         `json:"entity"`
	Field       string         `json:"field"`
	Kind        ConstraintKind `json:"kind"`
	Value       Value          `json:"value,omitempty"`
	Enforcement Enforcement    `json:"enforcement,omitempty"`
	Confidence  float64        `json:"confidence"`
	Sources     []string       `json:"sources"`
}

// Key returns the rule's canonical identity triple.
func (r NormalizedRule) Key() RuleKey {
	return RuleKey{Entity: r.Entity, Field: r.Field, Kind: r.Kind}
}

// MergeRule combines two rules sharing a key: maximum confidence wins the
// value slot, sources are unioned and sorted for determinism.
func MergeRule(a, b NormalizedRule) NormalizedRule {
	merged := a
	if b.Confidence > a.Confidence {
		merged = b
	}
	seen := make(map[string]bool, len(a.Sources)+len(b.Sources))
	var sources []string
	for _, s := range append(append([]string{}, a.Sources...), b.Sources...) {
		if !seen[s] {
			seen[s] = true
			sources = append(sources, s)
		}
	}
	sort.Strings(sources)
	merged.Sources = sources
	return merged
}
