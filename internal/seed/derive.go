package seed

import (
	"fmt"
	"sort"

	"github.com/verdict-engine/verdict/internal/ir"
)

// Derive computes the seed plan for an IR document.
//
// Entities are ordered topologically so parents are always materialized
// before children. A cycle in the generation-order graph is a hard,
// non-recoverable CyclicDependencyError.
//
// Cyclic *data* dependencies (flow preconditions referencing entities in a
// loop, e.g. order reduces product stock) are permitted; only generation
// cycles are fatal.
func Derive(app *ir.ApplicationIR) (*Plan, error) {
	order, err := generationOrder(app.Domain)
	if err != nil {
		return nil, err
	}

	irHash, err := app.Hash()
	if err != nil {
		return nil, fmt.Errorf("seed derive: %w", err)
	}

	// Requirements are built as heap values and copied into the plan
	// only after hints and preconditions have been applied, so the
	// byEntity pointers stay valid across the whole derivation.
	byEntity := make(map[string]*Requirement, len(order))
	reqs := make([]*Requirement, 0, len(order))

	for _, name := range order {
		entity, ok := app.Domain.Entity(name)
		if !ok {
			return nil, fmt.Errorf("seed derive: entity %q in order but not in domain", name)
		}

		req := &Requirement{
			EntityName:     name,
			UUIDPrimary:    EntityUUID(name, 0, RolePrimary),
			UUIDDelete:     EntityUUID(name, 0, RoleDelete),
			Fields:         ir.Obj{},
			CardinalityMin: 1,
		}

		for _, attr := range entity.Attributes {
			if attr.Name == "id" {
				continue // primary identity comes from UUIDPrimary
			}
			req.Fields[attr.Name] = deriveFieldValue(app.Validation, name, attr)
		}

		// Foreign keys and nested-child wiring come from IR-flagged
		// relationships only. No name-based inference.
		for _, rel := range app.Domain.RelationshipsTo(name) {
			parent, ok := byEntity[rel.Parent]
			if !ok {
				return nil, fmt.Errorf("seed derive: parent %q of %q not yet materialized", rel.Parent, name)
			}
			req.FKRefs = append(req.FKRefs, FKRef{
				Field:        rel.ForeignKeyField,
				TargetEntity: rel.Parent,
				TargetUUID:   parent.UUIDPrimary,
			})
			delete(req.Fields, rel.ForeignKeyField)
			if rel.Nested {
				req.IsNestedChild = true
				req.ParentEntity = rel.Parent
			}
			for _, fm := range rel.FieldMappings {
				if src, ok := byEntity[fm.SourceEntity]; ok {
					if v, ok := src.Fields[fm.SourceField]; ok {
						req.Fields[fm.TargetField] = v
					}
				}
			}
		}

		reqs = append(reqs, req)
		byEntity[name] = req
	}

	applySeedHints(app.Tests, byEntity)
	applyPreconditions(app, byEntity)

	plan := &Plan{IRHash: irHash, Requirements: make([]Requirement, len(reqs))}
	for i, req := range reqs {
		plan.Requirements[i] = *req
	}
	return plan, nil
}

// deriveFieldValue picks a seed value for one attribute. Priority:
// enumerated allowed values (first element) > numeric range (min + 1) >
// pattern-matching synthetic string > type default.
func deriveFieldValue(v ir.ValidationModel, entity string, attr ir.Attribute) ir.Value {
	constraints := v.ConstraintsFor(entity, attr.Name)

	for _, c := range constraints {
		if c.Kind != ir.KindEnum {
			continue
		}
		if list, ok := c.Value.(ir.List); ok && len(list) > 0 {
			return list[0]
		}
	}
	for _, c := range constraints {
		if c.Kind != ir.KindRangeMin {
			continue
		}
		if n, ok := c.Value.(ir.Int); ok {
			return ir.Int(int64(n) + 1)
		}
	}
	for _, c := range constraints {
		if c.Kind != ir.KindPattern {
			continue
		}
		if pat, ok := c.Value.(ir.Str); ok {
			return ir.Str(syntheticForPattern(string(pat), attr.Name))
		}
	}
	return typeDefault(attr.Type)
}

func typeDefault(attrType string) ir.Value {
	switch attrType {
	case "int":
		return ir.Int(1)
	case "bool":
		return ir.Bool(true)
	case "uuid":
		// A fixed, clearly-synthetic UUID. Real references come from
		// FKRefs, never from field defaults.
		return ir.Str("00000000-0000-0000-0000-000000000001")
	case "timestamp":
		return ir.Str("2024-01-01T00:00:00Z")
	default:
		return ir.Str("seed-value")
	}
}

// applySeedHints raises cardinality minimums declared in TestsModel.
func applySeedHints(tests ir.TestsModel, byEntity map[string]*Requirement) {
	for _, hint := range tests.SeedHints {
		if req, ok := byEntity[hint.Entity]; ok && hint.MinCount > req.CardinalityMin {
			req.CardinalityMin = hint.MinCount
		}
	}
}

// applyPreconditions maps each flow precondition to field settings or
// cardinality minimums on the affected requirement.
func applyPreconditions(app *ir.ApplicationIR, byEntity map[string]*Requirement) {
	for _, flow := range app.Behavior.Flows {
		for _, pre := range flow.Preconditions {
			req, ok := byEntity[pre.Entity]
			if !ok {
				continue
			}
			label := fmt.Sprintf("%s: %s.%s %s", flow.Name, pre.Entity, pre.Field, pre.Op)

			switch pre.Op {
			case ir.OpEquals:
				if pre.Value != nil {
					req.Fields[pre.Field] = pre.Value
				}
			case ir.OpGreater:
				if n, ok := pre.Value.(ir.Int); ok {
					req.Fields[pre.Field] = ir.Int(int64(n) + 1)
				}
			case ir.OpExists:
				if _, set := req.Fields[pre.Field]; !set {
					req.Fields[pre.Field] = ir.Str("seed-value")
				}
			case ir.OpNonEmpty:
				// A non-empty child collection forces at least one child
				// row. The collection is identified by the IR-declared
				// path segment of a nested relationship, never by name
				// similarity.
				for _, rel := range app.Domain.Relationships {
					if rel.Parent != pre.Entity || !rel.Nested || rel.PathSegment != pre.Field {
						continue
					}
					if child, ok := byEntity[rel.Child]; ok && child.CardinalityMin < 1 {
						child.CardinalityMin = 1
					}
					if child, ok := byEntity[rel.Child]; ok {
						child.SatisfiedPreconditions = appendUnique(child.SatisfiedPreconditions, label)
					}
				}
				continue
			default:
				continue
			}
			req.SatisfiedPreconditions = appendUnique(req.SatisfiedPreconditions, label)
		}
	}
	for _, req := range byEntity {
		sort.Strings(req.SatisfiedPreconditions)
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
