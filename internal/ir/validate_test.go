package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validApp() *ApplicationIR {
	return &ApplicationIR{
		Version: "1",
		Name:    "shop",
		Domain: DomainModel{
			Entities: []Entity{
				{Name: "customer", Attributes: []Attribute{
					{Name: "id", Type: "uuid", Required: true},
					{Name: "email", Type: "string", Required: true},
				}},
				{Name: "order", Attributes: []Attribute{
					{Name: "id", Type: "uuid", Required: true},
					{Name: "customer_id", Type: "uuid", Required: true},
					{Name: "amount", Type: "int", Required: true},
				}},
			},
			Relationships: []Relationship{
				{Parent: "customer", Child: "order", ForeignKeyField: "customer_id"},
			},
		},
		Validation: ValidationModel{
			Constraints: []Constraint{
				{Entity: "order", Field: "amount", Kind: KindRangeMin, Value: Int(1)},
			},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidate_ValidDocument(t *testing.T) {
	assert.Empty(t, Validate(validApp()))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	app := validApp()
	app.Name = ""
	app.Validation.Constraints = append(app.Validation.Constraints,
		Constraint{Entity: "order", Field: "amount", Kind: "BOGUS"})

	errs := Validate(app)
	require.Len(t, errs, 2)
	assert.Contains(t, codes(errs), ErrIRNameEmpty)
	assert.Contains(t, codes(errs), ErrUnknownKind)
}

func TestValidate_ErrorCases(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*ApplicationIR)
		wantCode string
	}{
		{
			"empty name",
			func(a *ApplicationIR) { a.Name = "  " },
			ErrIRNameEmpty,
		},
		{
			"no entities",
			func(a *ApplicationIR) { a.Domain.Entities = nil },
			ErrIRNoEntities,
		},
		{
			"duplicate entity",
			func(a *ApplicationIR) {
				a.Domain.Entities = append(a.Domain.Entities, a.Domain.Entities[0])
			},
			ErrDuplicateName,
		},
		{
			"float attribute type",
			func(a *ApplicationIR) {
				a.Domain.Entities[1].Attributes[2].Type = "float"
			},
			ErrFloatForbidden,
		},
		{
			"invalid attribute type",
			func(a *ApplicationIR) {
				a.Domain.Entities[1].Attributes[2].Type = "decimal"
			},
			ErrInvalidType,
		},
		{
			"unknown relationship entity",
			func(a *ApplicationIR) { a.Domain.Relationships[0].Parent = "ghost" },
			ErrUnknownEntity,
		},
		{
			"self relationship",
			func(a *ApplicationIR) {
				a.Domain.Relationships[0].Parent = "order"
			},
			ErrSelfRelationship,
		},
		{
			"missing foreign key",
			func(a *ApplicationIR) { a.Domain.Relationships[0].ForeignKeyField = "" },
			ErrMissingForeignKey,
		},
		{
			"nested without path segment",
			func(a *ApplicationIR) {
				a.Domain.Relationships[0].Nested = true
				a.Domain.Relationships[0].ChildIDParam = "order_id"
			},
			ErrNestedIncomplete,
		},
		{
			"bad field mapping",
			func(a *ApplicationIR) {
				a.Domain.Relationships[0].FieldMappings = []FieldMapping{
					{TargetField: "x", SourceEntity: "customer", SourceField: "ghost"},
				}
			},
			ErrBadFieldMapping,
		},
		{
			"constraint without entity",
			func(a *ApplicationIR) { a.Validation.Constraints[0].Entity = "" },
			ErrConstraintNoEntity,
		},
		{
			"constraint unknown field",
			func(a *ApplicationIR) { a.Validation.Constraints[0].Field = "ghost" },
			ErrConstraintBadField,
		},
		{
			"constraint kind requires value",
			func(a *ApplicationIR) { a.Validation.Constraints[0].Value = nil },
			ErrConstraintNoValue,
		},
		{
			"flow without steps",
			func(a *ApplicationIR) {
				a.Behavior.Flows = []Flow{{Name: "empty"}}
			},
			ErrFlowNoSteps,
		},
		{
			"predicate unknown entity",
			func(a *ApplicationIR) {
				a.Behavior.Flows = []Flow{{
					Name:  "f",
					Steps: []FlowStep{{Endpoint: "POST /orders"}},
					Preconditions: []Predicate{
						{Entity: "ghost", Field: "x", Op: OpExists},
					},
				}}
			},
			ErrPredicateEntity,
		},
		{
			"invalid predicate op",
			func(a *ApplicationIR) {
				a.Behavior.Flows = []Flow{{
					Name:  "f",
					Steps: []FlowStep{{Endpoint: "POST /orders"}},
					Postconditions: []Predicate{
						{Entity: "order", Field: "amount", Op: "like"},
					},
				}}
			},
			ErrPredicateOp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := validApp()
			tt.mutate(app)
			errs := Validate(app)
			require.NotEmpty(t, errs)
			assert.Contains(t, codes(errs), tt.wantCode)
		})
	}
}
