package ir

// ConstraintKind is the closed taxonomy of validation constraint kinds.
//
// The set is versioned with the IR schema. Extractors and the normalizer
// map raw vocabulary onto these kinds; anything unmappable becomes
// KindUnclassified, which downstream components must route to MANUAL
// handling rather than guessing.
type ConstraintKind string

const (
	KindRangeMin         ConstraintKind = "RANGE_MIN"
	KindRangeMax         ConstraintKind = "RANGE_MAX"
	KindEnum             ConstraintKind = "ENUM"
	KindPattern          ConstraintKind = "PATTERN"
	KindPresence         ConstraintKind = "PRESENCE"
	KindUniqueness       ConstraintKind = "UNIQUENESS"
	KindRelationship     ConstraintKind = "RELATIONSHIP"
	KindStatusTransition ConstraintKind = "STATUS_TRANSITION"
	KindCustom           ConstraintKind = "CUSTOM"
	KindUnclassified     ConstraintKind = "UNCLASSIFIED"
)

// ValidConstraintKinds enumerates every member of the closed taxonomy.
var ValidConstraintKinds = map[ConstraintKind]bool{
	KindRangeMin:         true,
	KindRangeMax:         true,
	KindEnum:             true,
	KindPattern:          true,
	KindPresence:         true,
	KindUniqueness:       true,
	KindRelationship:     true,
	KindStatusTransition: true,
	KindCustom:           true,
	KindUnclassified:     true,
}

// Templatable reports whether a deterministic repair template exists for
// the kind. KindCustom and KindUnclassified are never templatable: they
// surface as MANUAL immediately.
func (k ConstraintKind) Templatable() bool {
	switch k {
	case KindCustom, KindUnclassified:
		return false
	default:
		return ValidConstraintKinds[k]
	}
}

// Enforcement declares where a constraint is enforced.
type Enforcement string

const (
	EnforceSchema      Enforcement = "schema"
	EnforceApplication Enforcement = "application"
	EnforceBoth        Enforcement = "both"
	EnforceUnspecified Enforcement = ""
)

// FailureKind classifies a runtime validation failure.
//
// Classification is derived purely from IR-declared predicates, status
// codes, and state snapshots -- never from field-name vocabulary -- so it
// remains valid across arbitrary application domains.
type FailureKind string

const (
	// FailureMissingPrecondition means the resource a request depends on
	// did not exist (a direct existence probe returned not-found).
	FailureMissingPrecondition FailureKind = "MISSING_PRECONDITION"

	// FailureWrongStatusCode means the IR declares the attempted transition
	// valid but the observed response was an error status.
	FailureWrongStatusCode FailureKind = "WRONG_STATUS_CODE"

	// FailureMissingSideEffect means a declared postcondition field did not
	// change between the before and after snapshots.
	FailureMissingSideEffect FailureKind = "MISSING_SIDE_EFFECT"

	// FailureUnknown means no classification rule applied.
	FailureUnknown FailureKind = "UNKNOWN"
)

// PredicateOp is the comparison operator of an entity-scoped predicate.
type PredicateOp string

const (
	OpEquals    PredicateOp = "eq"
	OpNotEquals PredicateOp = "ne"
	OpGreater   PredicateOp = "gt"
	OpLess      PredicateOp = "lt"
	OpExists    PredicateOp = "exists"
	OpNonEmpty  PredicateOp = "non_empty"
	OpChanged   PredicateOp = "changed"
)
