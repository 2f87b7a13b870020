package repair

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/ir"
)

// FixKind names a deterministic repair template.
type FixKind string

const (
	FixStatusCode        FixKind = "status_code_correction"
	FixTransitionGuard   FixKind = "status_transition_guard"
	FixComparisonGuard   FixKind = "comparison_guard"
	FixPreconditionGuard FixKind = "workflow_precondition_guard"
)

// Fix is one concrete repair action.
type Fix struct {
	Fingerprint    string  `json:"fingerprint"`
	TargetLocation string  `json:"target_location"` // file path within the snapshot
	Kind           FixKind `json:"fix_kind"`
	Payload        string  `json:"payload"`
}

// buildFix computes the fix for a classified failure, or false when no
// deterministic template exists.
//
// MISSING_PRECONDITION is a data defect, not a code defect: the seed
// plan, not the generated code, must be corrected upstream. No template
// is returned for it; the orchestrator reports it precisely instead of
// attempting a code repair.
func buildFix(f ValidationFailure, snapshot *extract.Snapshot) (Fix, bool) {
	switch f.Kind {
	case ir.FailureWrongStatusCode:
		target, ok := targetFile(snapshot, f)
		if !ok {
			return Fix{}, false
		}
		payload := fmt.Sprintf("%d->%d", f.Actual, f.Expected)
		return Fix{
			Fingerprint:    ir.FixFingerprint(target, f.Endpoint, string(FixStatusCode), payload),
			TargetLocation: target,
			Kind:           FixStatusCode,
			Payload:        payload,
		}, true

	case ir.FailureMissingSideEffect:
		if f.RelatedConstraint == nil || !f.RelatedConstraint.Kind.Templatable() {
			return Fix{}, false
		}
		target, ok := targetFile(snapshot, f)
		if !ok {
			return Fix{}, false
		}
		kind := guardKindFor(f.RelatedConstraint.Kind)
		payload := guardSnippet(kind, *f.RelatedConstraint)
		return Fix{
			Fingerprint:    ir.FixFingerprint(target, f.Endpoint, string(kind), payload),
			TargetLocation: target,
			Kind:           kind,
			Payload:        payload,
		}, true

	default:
		return Fix{}, false
	}
}

// guardKindFor selects the guard template family for a constraint kind.
func guardKindFor(kind ir.ConstraintKind) FixKind {
	switch kind {
	case ir.KindStatusTransition:
		return FixTransitionGuard
	case ir.KindRangeMin, ir.KindRangeMax:
		return FixComparisonGuard
	default:
		return FixPreconditionGuard
	}
}

// targetFile picks the snapshot file a fix applies to: the
// lexicographically first file mentioning the request path (handler
// files reference their routes), falling back to the first file
// mentioning the related entity.
func targetFile(snapshot *extract.Snapshot, f ValidationFailure) (string, bool) {
	path := f.Endpoint
	if i := strings.Index(path, " "); i >= 0 {
		path = path[i+1:]
	}
	// Route templates parameterize segments; match on the first literal
	// segment.
	segment := firstLiteralSegment(path)

	var entityFallback string
	for _, p := range snapshot.Paths() {
		content, _ := snapshot.Content(p)
		if segment != "" && strings.Contains(content, segment) {
			return p, true
		}
		if entityFallback == "" && f.RelatedConstraint != nil &&
			strings.Contains(content, f.RelatedConstraint.Entity) {
			entityFallback = p
		}
	}
	if entityFallback != "" {
		return entityFallback, true
	}
	return "", false
}

func firstLiteralSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || strings.HasPrefix(seg, ":") {
			continue
		}
		return "/" + seg
	}
	return ""
}

// apply executes the fix's transform against the file content, returning
// the new content. Transforms are pure text functions of their inputs,
// so applying the same fix twice yields the same output.
func (fix Fix) apply(content string) string {
	switch fix.Kind {
	case FixStatusCode:
		parts := strings.SplitN(fix.Payload, "->", 2)
		if len(parts) != 2 {
			return content
		}
		return replaceStatusLiteral(content, parts[0], parts[1])
	default:
		// Guard templates append their snippet if an equivalent guard is
		// not already present.
		if strings.Contains(normalizeStructure(content), normalizeStructure(fix.Payload)) {
			return content
		}
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content + fix.Payload + "\n"
	}
}

// replaceStatusLiteral replaces the first standalone occurrence of the
// status literal. Digits embedded in longer numbers, identifiers, or
// decimals are never touched.
func replaceStatusLiteral(content, from, to string) string {
	for i := 0; i+len(from) <= len(content); {
		j := strings.Index(content[i:], from)
		if j < 0 {
			break
		}
		j += i
		beforeOK := j == 0 || !isWordByte(content[j-1])
		afterOK := j+len(from) == len(content) || !isWordByte(content[j+len(from)])
		if beforeOK && afterOK {
			return content[:j] + to + content[j+len(from):]
		}
		i = j + 1
	}
	return content
}

func isWordByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_' || b == '.'
}

// guardSnippet renders the guard template for a constraint. The snippet
// is deliberately canonical: superficially different generated spellings
// of the same guard normalize to the same structural form, which is what
// the already-satisfied check compares.
func guardSnippet(kind FixKind, c ir.Constraint) string {
	switch kind {
	case FixTransitionGuard:
		return fmt.Sprintf(
			"// verdict:guard %s.%s %s\nif (!allowedTransitions[%s.%s].includes(next)) {\n  return reject(422);\n}",
			c.Entity, c.Field, c.Kind, c.Entity, c.Field)
	case FixComparisonGuard:
		op := ">="
		if c.Kind == ir.KindRangeMax {
			op = "<="
		}
		bound := valueLiteral(c.Value)
		return fmt.Sprintf(
			"// verdict:guard %s.%s %s\nif (!(%s.%s %s %s)) {\n  return reject(422);\n}",
			c.Entity, c.Field, c.Kind, c.Entity, c.Field, op, bound)
	default:
		return fmt.Sprintf(
			"// verdict:guard %s.%s %s\nif (!preconditionHolds(%q, %q)) {\n  return reject(409);\n}",
			c.Entity, c.Field, c.Kind, c.Entity, c.Field)
	}
}

func valueLiteral(v ir.Value) string {
	switch val := v.(type) {
	case ir.Int:
		return strconv.FormatInt(int64(val), 10)
	case ir.Str:
		return strconv.Quote(string(val))
	case ir.Bool:
		return strconv.FormatBool(bool(val))
	default:
		return "null"
	}
}

// normalizeStructure reduces content to a whitespace-insensitive form for
// the already-satisfied comparison: if a candidate transform leaves this
// form unchanged, the fix is semantically present already and is not
// reapplied.
func normalizeStructure(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	space := false
	for _, r := range content {
		switch r {
		case ' ', '\t', '\n', '\r':
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
