package ir

import (
	"fmt"
	"strings"
)

// Validation error codes (V100-V199)
const (
	// General document errors (V100-V109)
	ErrIRNameEmpty    = "V100" // application name is required
	ErrIRNoEntities   = "V101" // at least one entity required
	ErrDuplicateName  = "V102" // duplicate entity/attribute name
	ErrInvalidType    = "V103" // invalid attribute type string
	ErrFloatForbidden = "V104" // float attribute types not allowed

	// Relationship errors (V110-V119)
	ErrUnknownEntity     = "V110" // relationship references unknown entity
	ErrMissingForeignKey = "V111" // relationship missing foreign key field
	ErrNestedIncomplete  = "V112" // nested relationship missing path segment or child id param
	ErrBadFieldMapping   = "V113" // field mapping references unknown entity/field
	ErrSelfRelationship  = "V114" // entity related to itself

	// Constraint errors (V120-V129)
	ErrUnknownKind        = "V120" // constraint kind outside closed taxonomy
	ErrConstraintNoEntity = "V121" // constraint missing entity
	ErrConstraintBadField = "V122" // constraint references unknown field
	ErrConstraintNoValue  = "V123" // kind requires a value but none declared

	// Flow errors (V130-V139)
	ErrFlowNoSteps     = "V130" // flow must have at least one step
	ErrPredicateEntity = "V131" // predicate references unknown entity
	ErrPredicateOp     = "V132" // invalid predicate operator
)

// ValidationError represents a structural defect in an IR document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// validAttributeTypes is the closed set of attribute type strings.
var validAttributeTypes = map[string]bool{
	"string":    true,
	"int":       true,
	"bool":      true,
	"uuid":      true,
	"timestamp": true,
}

var validPredicateOps = map[PredicateOp]bool{
	OpEquals:    true,
	OpNotEquals: true,
	OpGreater:   true,
	OpLess:      true,
	OpExists:    true,
	OpNonEmpty:  true,
	OpChanged:   true,
}

// Validate checks an IR document against schema rules. Returns all errors
// found (does not fail fast). An IR with any validation error is a
// structural defect: nothing downstream may consume it.
func Validate(app *ApplicationIR) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(app.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "application name is required and must be non-empty",
			Code:    ErrIRNameEmpty,
		})
	}

	if len(app.Domain.Entities) == 0 {
		errs = append(errs, ValidationError{
			Field:   "domain.entities",
			Message: "at least one entity is required",
			Code:    ErrIRNoEntities,
		})
	}

	entityNames := make(map[string]bool)
	for i, e := range app.Domain.Entities {
		if entityNames[e.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("domain.entities[%d].name", i),
				Message: fmt.Sprintf("duplicate entity name: %q", e.Name),
				Code:    ErrDuplicateName,
			})
		}
		entityNames[e.Name] = true

		attrNames := make(map[string]bool)
		for j, a := range e.Attributes {
			if attrNames[a.Name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("domain.entities[%d].attributes[%d]", i, j),
					Message: fmt.Sprintf("duplicate attribute %q on entity %q", a.Name, e.Name),
					Code:    ErrDuplicateName,
				})
			}
			attrNames[a.Name] = true

			if a.Type == "float" || a.Type == "double" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("domain.entities[%d].attributes[%d].type", i, j),
					Message: fmt.Sprintf("float attribute types are forbidden: %q", a.Name),
					Code:    ErrFloatForbidden,
				})
			} else if !validAttributeTypes[a.Type] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("domain.entities[%d].attributes[%d].type", i, j),
					Message: fmt.Sprintf("invalid attribute type %q", a.Type),
					Code:    ErrInvalidType,
				})
			}
		}
	}

	errs = append(errs, validateRelationships(app, entityNames)...)
	errs = append(errs, validateConstraints(app, entityNames)...)
	errs = append(errs, validateFlows(app, entityNames)...)

	return errs
}

func validateRelationships(app *ApplicationIR, entities map[string]bool) []ValidationError {
	var errs []ValidationError
	for i, r := range app.Domain.Relationships {
		field := fmt.Sprintf("domain.relationships[%d]", i)

		if !entities[r.Parent] {
			errs = append(errs, ValidationError{
				Field:   field + ".parent",
				Message: fmt.Sprintf("unknown parent entity %q", r.Parent),
				Code:    ErrUnknownEntity,
			})
		}
		if !entities[r.Child] {
			errs = append(errs, ValidationError{
				Field:   field + ".child",
				Message: fmt.Sprintf("unknown child entity %q", r.Child),
				Code:    ErrUnknownEntity,
			})
		}
		if r.Parent == r.Child {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("entity %q cannot relate to itself", r.Parent),
				Code:    ErrSelfRelationship,
			})
		}
		if strings.TrimSpace(r.ForeignKeyField) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".foreign_key_field",
				Message: "foreign key field is required",
				Code:    ErrMissingForeignKey,
			})
		}
		if r.Nested && (r.PathSegment == "" || r.ChildIDParam == "") {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "nested relationship requires explicit path_segment and child_id_param",
				Code:    ErrNestedIncomplete,
			})
		}
		for j, fm := range r.FieldMappings {
			src, ok := app.Domain.Entity(fm.SourceEntity)
			if !ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.field_mappings[%d]", field, j),
					Message: fmt.Sprintf("unknown source entity %q", fm.SourceEntity),
					Code:    ErrBadFieldMapping,
				})
				continue
			}
			if _, ok := src.Attribute(fm.SourceField); !ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.field_mappings[%d]", field, j),
					Message: fmt.Sprintf("unknown source field %q on entity %q", fm.SourceField, fm.SourceEntity),
					Code:    ErrBadFieldMapping,
				})
			}
		}
	}
	return errs
}

// kindsRequiringValue must declare a comparison value to be checkable.
var kindsRequiringValue = map[ConstraintKind]bool{
	KindRangeMin:         true,
	KindRangeMax:         true,
	KindEnum:             true,
	KindPattern:          true,
	KindStatusTransition: true,
}

func validateConstraints(app *ApplicationIR, entities map[string]bool) []ValidationError {
	var errs []ValidationError
	for i, c := range app.Validation.Constraints {
		field := fmt.Sprintf("validation.constraints[%d]", i)

		if strings.TrimSpace(c.Entity) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".entity",
				Message: "constraint entity is required",
				Code:    ErrConstraintNoEntity,
			})
			continue
		}
		if !entities[c.Entity] {
			errs = append(errs, ValidationError{
				Field:   field + ".entity",
				Message: fmt.Sprintf("unknown entity %q", c.Entity),
				Code:    ErrUnknownEntity,
			})
			continue
		}
		if !ValidConstraintKinds[c.Kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("constraint kind %q is outside the closed taxonomy", c.Kind),
				Code:    ErrUnknownKind,
			})
		}
		if e, ok := app.Domain.Entity(c.Entity); ok && c.Field != "" {
			if _, ok := e.Attribute(c.Field); !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".field",
					Message: fmt.Sprintf("unknown field %q on entity %q", c.Field, c.Entity),
					Code:    ErrConstraintBadField,
				})
			}
		}
		if kindsRequiringValue[c.Kind] && c.Value == nil {
			errs = append(errs, ValidationError{
				Field:   field + ".value",
				Message: fmt.Sprintf("constraint kind %s requires a declared value", c.Kind),
				Code:    ErrConstraintNoValue,
			})
		}
	}
	return errs
}

func validateFlows(app *ApplicationIR, entities map[string]bool) []ValidationError {
	var errs []ValidationError
	for i, f := range app.Behavior.Flows {
		field := fmt.Sprintf("behavior.flows[%d]", i)

		if len(f.Steps) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".steps",
				Message: fmt.Sprintf("flow %q must have at least one step", f.Name),
				Code:    ErrFlowNoSteps,
			})
		}

		check := func(preds []Predicate, label string) {
			for j, p := range preds {
				if !entities[p.Entity] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.%s[%d].entity", field, label, j),
						Message: fmt.Sprintf("unknown entity %q", p.Entity),
						Code:    ErrPredicateEntity,
					})
				}
				if !validPredicateOps[p.Op] {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("%s.%s[%d].op", field, label, j),
						Message: fmt.Sprintf("invalid predicate operator %q", p.Op),
						Code:    ErrPredicateOp,
					})
				}
			}
		}
		check(f.Preconditions, "preconditions")
		check(f.Postconditions, "postconditions")
		check(f.Invariants, "invariants")
	}
	return errs
}
