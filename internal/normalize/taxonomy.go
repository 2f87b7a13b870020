package normalize

import "github.com/verdict-engine/verdict/internal/ir"

// kindTaxonomy maps folded raw kind labels onto the closed constraint
// kind enumeration. "must be >=", "minimum of", and "gte" are all the
// same fact; this table is where that equivalence is declared.
var kindTaxonomy = map[string]ir.ConstraintKind{
	// RANGE_MIN
	"check_>=":         ir.KindRangeMin,
	"guard_>=":         ir.KindRangeMin,
	"gte":              ir.KindRangeMin,
	"min":              ir.KindRangeMin,
	"minimum":          ir.KindRangeMin,
	"minimum_of":       ir.KindRangeMin,
	"must_be_>=":       ir.KindRangeMin,
	"minlength":        ir.KindRangeMin,
	"min_length":       ir.KindRangeMin,
	"greater_or_equal": ir.KindRangeMin,

	// RANGE_MAX
	"check_<=":   ir.KindRangeMax,
	"guard_<=":   ir.KindRangeMax,
	"lte":        ir.KindRangeMax,
	"max":        ir.KindRangeMax,
	"maximum":    ir.KindRangeMax,
	"maxlength":  ir.KindRangeMax,
	"max_length": ir.KindRangeMax,

	// ENUM
	"check_in": ir.KindEnum,
	"enum":     ir.KindEnum,
	"oneof":    ir.KindEnum,
	"one_of":   ir.KindEnum,
	"in":       ir.KindEnum,

	// PATTERN
	"pattern": ir.KindPattern,
	"regex":   ir.KindPattern,
	"regexp":  ir.KindPattern,
	"matches": ir.KindPattern,
	"format":  ir.KindPattern,

	// PRESENCE
	"not_null":  ir.KindPresence,
	"required":  ir.KindPresence,
	"presence":  ir.KindPresence,
	"non_null":  ir.KindPresence,
	"mandatory": ir.KindPresence,

	// UNIQUENESS
	"unique":     ir.KindUniqueness,
	"uniqueness": ir.KindUniqueness,

	// RELATIONSHIP
	"references":  ir.KindRelationship,
	"foreign_key": ir.KindRelationship,
	"fk":          ir.KindRelationship,
	"belongs_to":  ir.KindRelationship,

	// STATUS_TRANSITION
	"transition_table":  ir.KindStatusTransition,
	"status_transition": ir.KindStatusTransition,
	"state_machine":     ir.KindStatusTransition,

	// CUSTOM (recognized but untemplatable shapes)
	"cross_field_guard": ir.KindCustom,
	"custom":            ir.KindCustom,
}

// ClassifyKind resolves a raw kind label to the closed taxonomy. Labels
// with no mapping become KindUnclassified -- never a best-effort guess.
func ClassifyKind(rawKind string) ir.ConstraintKind {
	if kind, ok := kindTaxonomy[CanonicalKey(rawKind)]; ok {
		return kind
	}
	return ir.KindUnclassified
}
