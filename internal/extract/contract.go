package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verdict-engine/verdict/internal/ir"
)

// ContractExtractor reads API contract documents (OpenAPI-shaped YAML or
// JSON): schema properties with minimum/maximum/enum/pattern keywords and
// required arrays. Entity context is the schema name.
type ContractExtractor struct{}

func (*ContractExtractor) Name() string { return "contract" }

func (e *ContractExtractor) ExtractFile(_ context.Context, path, content string) ([]RawRule, []Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, nil, nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		// Not a structured document; out of scope, not an extraction error.
		return nil, nil, nil
	}

	schemas := lookupSchemas(doc)
	if schemas == nil {
		return nil, nil, nil
	}

	var rules []RawRule
	var warnings []Warning

	for schemaName, rawSchema := range schemas {
		schema, ok := rawSchema.(map[string]any)
		if !ok {
			continue
		}

		emit := func(field, rawKind string, value ir.Value, confidence float64) {
			rules = append(rules, RawRule{
				Entity:     schemaName,
				Field:      field,
				RawKind:    rawKind,
				Value:      value,
				Confidence: confidence,
				Source:     e.Name(),
				File:       path,
			})
		}

		if required, ok := schema["required"].([]any); ok {
			for _, r := range required {
				if name, ok := r.(string); ok {
					emit(name, "required", nil, 0.9)
				}
			}
		}

		props, ok := schema["properties"].(map[string]any)
		if !ok {
			continue
		}
		for propName, rawProp := range props {
			prop, ok := rawProp.(map[string]any)
			if !ok {
				continue
			}
			if v, ok := prop["minimum"]; ok {
				if n, ok := toInt(v); ok {
					emit(propName, "minimum", ir.Int(n), 0.9)
				} else {
					warnings = append(warnings, Warning{
						Source:  e.Name(),
						File:    path,
						Message: fmt.Sprintf("%s.%s: non-integral minimum %v skipped", schemaName, propName, v),
					})
				}
			}
			if v, ok := prop["maximum"]; ok {
				if n, ok := toInt(v); ok {
					emit(propName, "maximum", ir.Int(n), 0.9)
				}
			}
			if v, ok := prop["minLength"]; ok {
				if n, ok := toInt(v); ok {
					emit(propName, "minLength", ir.Int(n), 0.9)
				}
			}
			if v, ok := prop["enum"].([]any); ok {
				list := make(ir.List, 0, len(v))
				for _, elem := range v {
					switch val := elem.(type) {
					case string:
						list = append(list, ir.Str(val))
					default:
						if n, ok := toInt(val); ok {
							list = append(list, ir.Int(n))
						}
					}
				}
				if len(list) > 0 {
					emit(propName, "enum", list, 0.9)
				}
			}
			if v, ok := prop["pattern"].(string); ok {
				emit(propName, "pattern", ir.Str(v), 0.9)
			}
		}
	}

	return rules, warnings, nil
}

// lookupSchemas finds the schema map in either OpenAPI 3 layout
// (components.schemas) or a bare top-level "schemas"/"definitions" map.
func lookupSchemas(doc map[string]any) map[string]any {
	if components, ok := doc["components"].(map[string]any); ok {
		if schemas, ok := components["schemas"].(map[string]any); ok {
			return schemas
		}
	}
	if schemas, ok := doc["schemas"].(map[string]any); ok {
		return schemas
	}
	if schemas, ok := doc["definitions"].(map[string]any); ok {
		return schemas
	}
	return nil
}

// toInt coerces YAML/JSON numbers to int64, rejecting non-integral floats.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
