package seed

import (
	"strings"
)

// syntheticForPattern produces a deterministic string intended to satisfy
// a declared pattern constraint. It handles the common declarative shapes
// seen in generated validation code; anything it cannot interpret falls
// back to a field-derived placeholder (which the external materializer may
// reject, surfacing the pattern as a seed gap rather than silently
// guessing).
func syntheticForPattern(pattern, field string) string {
	trimmed := strings.TrimPrefix(pattern, "^")
	trimmed = strings.TrimSuffix(trimmed, "$")

	switch {
	case trimmed == `\d+` || trimmed == `[0-9]+`:
		return "12345"
	case trimmed == `[a-z]+`:
		return "seedvalue"
	case trimmed == `[A-Z]+`:
		return "SEEDVALUE"
	case trimmed == `[a-zA-Z]+`:
		return "SeedValue"
	case trimmed == `[a-z0-9-]+`:
		return "seed-value-1"
	case strings.Contains(trimmed, "@"):
		// Email-shaped patterns.
		return "seed@example.com"
	case isLiteral(trimmed):
		return trimmed
	default:
		return field + "-seed"
	}
}

// isLiteral reports whether the pattern body contains no regex
// metacharacters, i.e. it matches only itself.
func isLiteral(s string) bool {
	return !strings.ContainsAny(s, `\[](){}*+?.|`)
}
