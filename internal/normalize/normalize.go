package normalize

import (
	"fmt"
	"sort"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/ir"
)

// Normalizer canonicalizes raw rules and merges semantic duplicates.
type Normalizer struct {
	synonyms *SynonymTable
}

// New creates a Normalizer. A nil table uses the embedded defaults.
func New(synonyms *SynonymTable) *Normalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Normalizer{synonyms: synonyms}
}

// Synonyms exposes the table so the matching engine's synonym tier works
// from the same equivalence classes.
func (n *Normalizer) Synonyms() *SynonymTable { return n.synonyms }

// Normalize canonicalizes entity/field/kind labels and performs the
// global semantic merge: rules sharing (entity, field, kind) collapse to
// one rule with the maximum confidence and the union of sources. This
// merge is the primary lever against false negatives from fragmented
// extraction.
//
// Output is sorted by key for determinism. Raw rules without entity
// context never reach this function (the extract join drops them), but a
// defensive warning is emitted if one slips through.
func (n *Normalizer) Normalize(raw []extract.RawRule) ([]ir.NormalizedRule, []extract.Warning) {
	var warnings []extract.Warning
	merged := make(map[ir.RuleKey]ir.NormalizedRule, len(raw))

	for _, r := range raw {
		if r.Entity == "" {
			warnings = append(warnings, extract.Warning{
				Source:  r.Source,
				File:    r.File,
				Message: fmt.Sprintf("dropped rule for field %q: no entity context", r.Field),
			})
			continue
		}

		rule := ir.NormalizedRule{
			Entity:     n.synonyms.Entity(r.Entity),
			Field:      n.synonyms.Field(r.Field),
			Kind:       ClassifyKind(r.RawKind),
			Value:      r.Value,
			Confidence: r.Confidence,
			Sources:    []string{r.Source},
		}

		key := rule.Key()
		if existing, ok := merged[key]; ok {
			merged[key] = ir.MergeRule(existing, rule)
		} else {
			merged[key] = rule
		}
	}

	out := make([]ir.NormalizedRule, 0, len(merged))
	for _, rule := range merged {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Kind < b.Kind
	})

	return out, warnings
}
