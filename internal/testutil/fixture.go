// Package testutil provides shared fixtures for engine tests: a small
// but complete application document, evidence builders, and a canned
// arbitration oracle.
package testutil

import (
	"github.com/verdict-engine/verdict/internal/ir"
)

// OrderApp returns a two-entity commerce document exercising every IR
// feature the engine cares about: a nested relationship with a field
// mapping, range, enum, pattern and presence constraints, a guarded
// payment flow, and seed hints.
//
// Callers may mutate the returned document freely; every call builds a
// fresh copy.
func OrderApp() *ir.ApplicationIR {
	return &ir.ApplicationIR{
		Version: "1",
		Name:    "orders",
		Domain: ir.DomainModel{
			Entities: []ir.Entity{
				{
					Name: "customer",
					Attributes: []ir.Attribute{
						{Name: "id", Type: "uuid", Required: true},
						{Name: "email", Type: "string", Required: true},
						{Name: "name", Type: "string"},
					},
				},
				{
					Name: "order",
					Attributes: []ir.Attribute{
						{Name: "id", Type: "uuid", Required: true},
						{Name: "customer_id", Type: "uuid", Required: true},
						{Name: "amount", Type: "int", Required: true},
						{Name: "status", Type: "string", Required: true},
					},
				},
			},
			Relationships: []ir.Relationship{
				{
					Parent:          "customer",
					Child:           "order",
					ForeignKeyField: "customer_id",
					Nested:          true,
					PathSegment:     "orders",
					ChildIDParam:    "order_id",
				},
			},
		},
		API: ir.APIModel{
			Endpoints: []ir.Endpoint{
				{Method: "POST", Path: "/customers", Entity: "customer", SuccessStatus: 201},
				{Method: "POST", Path: "/customers/{customer_id}/orders", Entity: "order", SuccessStatus: 201},
				{Method: "GET", Path: "/orders/{order_id}", Entity: "order", SuccessStatus: 200},
				{Method: "POST", Path: "/orders/{order_id}/pay", Entity: "order", SuccessStatus: 200},
				{Method: "DELETE", Path: "/orders/{order_id}", Entity: "order", SuccessStatus: 204},
			},
		},
		Behavior: ir.BehaviorModel{
			Flows: []ir.Flow{
				{
					Name: "pay_order",
					Steps: []ir.FlowStep{
						{Endpoint: "POST /orders/{order_id}/pay", Action: "pay"},
					},
					Preconditions: []ir.Predicate{
						{Entity: "order", Field: "status", Op: ir.OpEquals, Value: ir.Str("pending")},
					},
					Postconditions: []ir.Predicate{
						{Entity: "order", Field: "status", Op: ir.OpChanged},
					},
				},
			},
		},
		Validation: ir.ValidationModel{
			Constraints: []ir.Constraint{
				{Entity: "order", Field: "amount", Kind: ir.KindRangeMin, Value: ir.Int(1), Enforcement: ir.EnforceBoth},
				{Entity: "order", Field: "status", Kind: ir.KindEnum, Value: ir.List{ir.Str("pending"), ir.Str("paid"), ir.Str("cancelled")}, Enforcement: ir.EnforceApplication},
				{Entity: "order", Field: "customer_id", Kind: ir.KindRelationship, Value: ir.Str("customer"), Enforcement: ir.EnforceSchema},
				{Entity: "customer", Field: "email", Kind: ir.KindPattern, Value: ir.Str(`^[^@]+@[^@]+$`), Enforcement: ir.EnforceApplication},
				{Entity: "customer", Field: "email", Kind: ir.KindPresence, Enforcement: ir.EnforceBoth},
			},
		},
		Tests: ir.TestsModel{
			SeedHints: []ir.SeedHint{
				{Entity: "customer", MinCount: 1},
				{Entity: "order", MinCount: 2},
			},
			NestedResources: []string{"order"},
		},
	}
}

// MinimalApp returns the smallest document that passes IR validation:
// one entity, one constraint, no behavior.
func MinimalApp() *ir.ApplicationIR {
	return &ir.ApplicationIR{
		Version: "1",
		Name:    "minimal",
		Domain: ir.DomainModel{
			Entities: []ir.Entity{
				{
					Name: "item",
					Attributes: []ir.Attribute{
						{Name: "id", Type: "uuid", Required: true},
						{Name: "label", Type: "string", Required: true},
					},
				},
			},
		},
		Validation: ir.ValidationModel{
			Constraints: []ir.Constraint{
				{Entity: "item", Field: "label", Kind: ir.KindPresence},
			},
		},
	}
}
