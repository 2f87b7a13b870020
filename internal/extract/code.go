package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/verdict-engine/verdict/internal/ir"
)

// CodeExtractor reads validation structure out of application source:
// struct-tag style validator declarations, JSON-ish required markers, and
// guard-clause comparisons. Entity context comes from the file stem; a
// file whose stem carries no entity information (main, app, routes...)
// yields rules with an empty entity, which the join step converts to
// warnings.
type CodeExtractor struct{}

func (*CodeExtractor) Name() string { return "code" }

var (
	// Go-style struct tags: Field Type `... validate:"required,gte=0,..."`
	validateTagRe = regexp.MustCompile("(\\w+)\\s+\\S+\\s+`[^`]*validate:\"([^\"]+)\"")

	// JSON-ish required markers: "field": {"required": true, ...}
	jsonRequiredRe = regexp.MustCompile(`"(\w+)"\s*:\s*\{[^}]*"required"\s*:\s*true`)

	// Negated guard comparisons: if (!(x >= 0)) ... -- the comparison is
	// the constraint itself.
	negatedGuardRe = regexp.MustCompile(`if\s+[^{;]*!\(+\s*[\w.]*?(\w+)\s*(<=|>=|<|>)\s*(-?\d+)`)

	// Rejection guard comparisons: if x < 0 { return/raise/throw ... --
	// the constraint is the comparison's inverse.
	guardRe = regexp.MustCompile(`if\s+[^{;]*?(\w+)\s*(<=|>=|<|>)\s*(-?\d+)`)
)

// entityStopWords are file stems that carry no entity information.
var entityStopWords = map[string]bool{
	"main": true, "app": true, "index": true, "routes": true,
	"server": true, "config": true, "utils": true, "helpers": true,
	"test": true, "setup": true,
}

// entityFromPath derives the raw entity label from a file path stem.
// Returns "" when the stem is a structural stop word.
func entityFromPath(path string) string {
	stem := filepath.Base(path)
	if i := strings.Index(stem, "."); i >= 0 {
		stem = stem[:i]
	}
	for _, suffix := range []string{"_model", "_models", "_controller", "_service", "_schema", "_validator"} {
		stem = strings.TrimSuffix(stem, suffix)
	}
	if entityStopWords[stem] || stem == "" {
		return ""
	}
	return stem
}

func (e *CodeExtractor) ExtractFile(_ context.Context, path, content string) ([]RawRule, []Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".yaml", ".yml", ".json", ".md":
		return nil, nil, nil
	}

	entity := entityFromPath(path)
	var rules []RawRule

	emit := func(field, rawKind string, value ir.Value, confidence float64) {
		rules = append(rules, RawRule{
			Entity:     entity,
			Field:      field,
			RawKind:    rawKind,
			Value:      value,
			Confidence: confidence,
			Source:     e.Name(),
			File:       path,
		})
	}

	for _, m := range validateTagRe.FindAllStringSubmatch(content, -1) {
		field, tag := m[1], m[2]
		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "required":
				emit(field, "required", nil, 0.85)
			case strings.HasPrefix(part, "gte=") || strings.HasPrefix(part, "min="):
				if n, err := strconv.ParseInt(part[strings.Index(part, "=")+1:], 10, 64); err == nil {
					emit(field, "gte", ir.Int(n), 0.85)
				}
			case strings.HasPrefix(part, "lte=") || strings.HasPrefix(part, "max="):
				if n, err := strconv.ParseInt(part[strings.Index(part, "=")+1:], 10, 64); err == nil {
					emit(field, "lte", ir.Int(n), 0.85)
				}
			case strings.HasPrefix(part, "oneof="):
				words := strings.Fields(part[len("oneof="):])
				list := make(ir.List, 0, len(words))
				for _, w := range words {
					list = append(list, ir.Str(strings.Trim(w, "'")))
				}
				emit(field, "oneof", list, 0.85)
			}
		}
	}

	for _, m := range jsonRequiredRe.FindAllStringSubmatch(content, -1) {
		emit(m[1], "required", nil, 0.75)
	}

	for _, line := range strings.Split(content, "\n") {
		if m := negatedGuardRe.FindStringSubmatch(line); m != nil {
			n, err := strconv.ParseInt(m[3], 10, 64)
			if err != nil {
				continue
			}
			// The negated comparison is the constraint as written.
			switch m[2] {
			case ">":
				emit(m[1], "guard >=", ir.Int(n+1), 0.7)
			case ">=":
				emit(m[1], "guard >=", ir.Int(n), 0.7)
			case "<":
				emit(m[1], "guard <=", ir.Int(n-1), 0.7)
			case "<=":
				emit(m[1], "guard <=", ir.Int(n), 0.7)
			}
			continue
		}
		m := guardRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			continue
		}
		// A rejection guard ("if x < 5" + error path) implies the inverse
		// constraint holds for valid data: x >= 5.
		switch m[2] {
		case "<":
			emit(m[1], "guard >=", ir.Int(n), 0.7)
		case "<=":
			emit(m[1], "guard >=", ir.Int(n+1), 0.7)
		case ">":
			emit(m[1], "guard <=", ir.Int(n), 0.7)
		case ">=":
			emit(m[1], "guard <=", ir.Int(n-1), 0.7)
		}
	}

	return rules, nil, nil
}
