package normalize

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

// SynonymTable resolves alternate spellings to canonical names. It is the
// single place domain vocabulary is allowed to live.
type SynonymTable struct {
	fields   map[string]string // folded spelling -> canonical
	entities map[string]string
}

// synonymFile is the YAML shape of a synonym declaration.
type synonymFile struct {
	Fields   map[string][]string `yaml:"fields"`
	Entities map[string][]string `yaml:"entities"`
}

// DefaultSynonyms loads the embedded default table.
func DefaultSynonyms() *SynonymTable {
	t, err := ParseSynonyms(defaultSynonymsYAML)
	if err != nil {
		// The embedded file is part of the build; a parse failure is a
		// packaging defect, not a runtime condition.
		panic(fmt.Sprintf("embedded synonym table: %v", err))
	}
	return t
}

// ParseSynonyms parses a YAML synonym declaration.
func ParseSynonyms(data []byte) (*SynonymTable, error) {
	var file synonymFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("synonym table: %w", err)
	}
	t := &SynonymTable{
		fields:   make(map[string]string),
		entities: make(map[string]string),
	}
	for canonical, members := range file.Fields {
		canonical = CanonicalKey(canonical)
		t.fields[canonical] = canonical
		for _, m := range members {
			t.fields[CanonicalKey(m)] = canonical
		}
	}
	for canonical, members := range file.Entities {
		canonical = CanonicalKey(canonical)
		t.entities[canonical] = canonical
		for _, m := range members {
			t.entities[CanonicalKey(m)] = canonical
		}
	}
	return t, nil
}

// Extend merges additional declarations into the table. Later
// declarations win on conflict.
func (t *SynonymTable) Extend(data []byte) error {
	extra, err := ParseSynonyms(data)
	if err != nil {
		return err
	}
	for k, v := range extra.fields {
		t.fields[k] = v
	}
	for k, v := range extra.entities {
		t.entities[k] = v
	}
	return nil
}

// Field resolves a field spelling to its canonical name. Unknown
// spellings resolve to their own folded form.
func (t *SynonymTable) Field(raw string) string {
	key := CanonicalKey(raw)
	if canonical, ok := t.fields[key]; ok {
		return canonical
	}
	return key
}

// Entity resolves an entity spelling to its canonical name, including
// plural folding. Unknown spellings resolve to their own folded,
// singularized form.
func (t *SynonymTable) Entity(raw string) string {
	key := CanonicalKey(raw)
	if canonical, ok := t.entities[key]; ok {
		return canonical
	}
	singular := singularize(key)
	if canonical, ok := t.entities[singular]; ok {
		return canonical
	}
	return singular
}

// SameField reports whether two spellings resolve to the same canonical
// field name.
func (t *SynonymTable) SameField(a, b string) bool {
	return t.Field(a) == t.Field(b)
}

var folder = cases.Fold()

// CanonicalKey folds a label for comparison: NFC normalization, Unicode
// case folding, and separator folding (spaces and hyphens become
// underscores, runs collapse).
func CanonicalKey(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// singularize folds the regular English plural forms. Table names and
// schema names routinely disagree on number; this folding is part of the
// equivalence table, not a domain heuristic.
func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "sses") || strings.HasSuffix(s, "shes") || strings.HasSuffix(s, "ches"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss") && len(s) > 1:
		return s[:len(s)-1]
	}
	return s
}
