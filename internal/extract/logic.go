package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/verdict-engine/verdict/internal/ir"
)

// LogicExtractor recognizes business-logic patterns by shape. Two shapes
// are recognized:
//
//   - transition tables: a named map literal from string keys to lists of
//     strings, the universal shape of a state machine's allowed-transitions
//     table;
//   - rejection guards that compare two fields of the same object, the
//     shape of a cross-field invariant check.
//
// The shapes are structural. No domain keyword list decides whether a map
// is "really" a status table -- any string-to-string-list table is
// reported, with the variable name as the field label, and the semantic
// matcher decides whether the IR declares a corresponding constraint.
type LogicExtractor struct{}

func (*LogicExtractor) Name() string { return "logic" }

var (
	// name = { ... or name: { ... or name := map[...]... {
	tableHeadRe = regexp.MustCompile(`(\w+)\s*(?::?=|:)\s*(?:map\[[^\]]+\]\[\]\w+)?\s*\{\s*$`)

	// "key": ["a", "b"] or 'key': ['a'] or "key": {"a", "b"}
	transitionEntryRe = regexp.MustCompile(`["'](\w+)["']\s*:\s*[\[{]([^\]}]*)[\]}]`)

	// if a.x < a.y { / if (x > y) raise  -- cross-field comparison guard
	crossFieldGuardRe = regexp.MustCompile(`if\s+[^{;]*?(\w+)\s*(<=|>=|<|>)\s*(\w+)[^\d]`)
)

func (e *LogicExtractor) ExtractFile(_ context.Context, path, content string) ([]RawRule, []Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".yaml", ".yml", ".json", ".md":
		return nil, nil, nil
	}

	entity := entityFromPath(path)
	var rules []RawRule

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		head := tableHeadRe.FindStringSubmatch(line)
		if head == nil {
			continue
		}

		// Collect consecutive string -> string-list entries.
		transitions := ir.Obj{}
		for j := i + 1; j < len(lines); j++ {
			entry := transitionEntryRe.FindStringSubmatch(lines[j])
			if entry == nil {
				break
			}
			targets := ir.List{}
			for _, t := range strings.Split(entry[2], ",") {
				t = strings.Trim(strings.TrimSpace(t), `"'`)
				if t != "" {
					targets = append(targets, ir.Str(t))
				}
			}
			transitions[entry[1]] = targets
		}

		// A single entry is just a list constant; two or more keyed
		// entries form a transition-table shape.
		if len(transitions) >= 2 {
			rules = append(rules, RawRule{
				Entity:     entity,
				Field:      head[1],
				RawKind:    "transition table",
				Value:      transitions,
				Confidence: 0.8,
				Source:     e.Name(),
				File:       path,
			})
		}
	}

	for _, line := range lines {
		m := crossFieldGuardRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Skip numeric comparisons (handled by the code extractor) and
		// trivially self-referential matches.
		if m[1] == m[3] || isNumeric(m[3]) {
			continue
		}
		rules = append(rules, RawRule{
			Entity:     entity,
			Field:      m[1],
			RawKind:    "cross-field guard",
			Value:      ir.Obj{"op": ir.Str(m[2]), "other": ir.Str(m[3])},
			Confidence: 0.6,
			Source:     e.Name(),
			File:       path,
		})
	}

	return rules, nil, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
