package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/verdict-engine/verdict/internal/ir"
)

// SchemaExtractor reads database schema shapes: CREATE TABLE blocks with
// column clauses, CHECK constraints, UNIQUE markers, and REFERENCES. It
// is dialect-tolerant -- it recognizes the declarative clause shapes, not
// any one SQL grammar.
type SchemaExtractor struct{}

func (*SchemaExtractor) Name() string { return "schema" }

var (
	createTableRe = regexp.MustCompile("(?i)CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?[\"'`]?(\\w+)[\"'`]?")
	columnRe      = regexp.MustCompile("^\\s*[\"'`]?(\\w+)[\"'`]?\\s+\\w+")
	checkMinRe    = regexp.MustCompile(`(?i)CHECK\s*\(\s*[\"'` + "`" + `]?(\w+)[\"'` + "`" + `]?\s*>=?\s*(-?\d+)\s*\)`)
	checkMaxRe    = regexp.MustCompile(`(?i)CHECK\s*\(\s*[\"'` + "`" + `]?(\w+)[\"'` + "`" + `]?\s*<=?\s*(-?\d+)\s*\)`)
	checkInRe     = regexp.MustCompile(`(?i)CHECK\s*\(\s*[\"'` + "`" + `]?(\w+)[\"'` + "`" + `]?\s+IN\s*\(([^)]+)\)`)
	referencesRe  = regexp.MustCompile(`(?i)REFERENCES\s+[\"'` + "`" + `]?(\w+)[\"'` + "`" + `]?`)
)

func (e *SchemaExtractor) ExtractFile(_ context.Context, path, content string) ([]RawRule, []Warning, error) {
	if !strings.HasSuffix(path, ".sql") && !strings.Contains(strings.ToUpper(content), "CREATE TABLE") {
		return nil, nil, nil
	}

	var rules []RawRule
	table := ""

	for _, line := range strings.Split(content, "\n") {
		if m := createTableRe.FindStringSubmatch(line); m != nil {
			table = m[1]
			continue
		}
		if table == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), ")") {
			table = ""
			continue
		}

		cm := columnRe.FindStringSubmatch(line)
		column := ""
		if cm != nil {
			column = cm[1]
		}

		emit := func(field, rawKind string, value ir.Value, confidence float64) {
			rules = append(rules, RawRule{
				Entity:     table,
				Field:      field,
				RawKind:    rawKind,
				Value:      value,
				Confidence: confidence,
				Source:     e.Name(),
				File:       path,
			})
		}

		if m := checkMinRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.ParseInt(m[2], 10, 64); err == nil {
				emit(m[1], "check >=", ir.Int(n), 0.9)
			}
		}
		if m := checkMaxRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.ParseInt(m[2], 10, 64); err == nil {
				emit(m[1], "check <=", ir.Int(n), 0.9)
			}
		}
		if m := checkInRe.FindStringSubmatch(line); m != nil {
			emit(m[1], "check in", parseInList(m[2]), 0.9)
		}
		if column == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(line), "NOT NULL") {
			emit(column, "not null", nil, 0.9)
		}
		if strings.Contains(strings.ToUpper(line), "UNIQUE") {
			emit(column, "unique", nil, 0.9)
		}
		if m := referencesRe.FindStringSubmatch(line); m != nil {
			emit(column, "references", ir.Str(m[1]), 0.9)
		}
	}

	return rules, nil, nil
}

// parseInList converts the body of an IN (...) clause into a value list.
func parseInList(body string) ir.Value {
	parts := strings.Split(body, ",")
	list := make(ir.List, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "'\"`")
		if p == "" {
			continue
		}
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			list = append(list, ir.Int(n))
			continue
		}
		list = append(list, ir.Str(p))
	}
	return list
}
