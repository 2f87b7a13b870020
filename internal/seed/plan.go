package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verdict-engine/verdict/internal/ir"
)

// seedNamespace is the fixed UUIDv5 namespace for seed identity. Seed
// UUIDs are deterministic functions of (entity, ordinal, role) -- never
// randomly generated.
var seedNamespace = uuid.MustParse("8a4886a6-0a4f-5cd1-9d2a-5b2c3f1e7a90")

// UUIDRole distinguishes the two seed rows every entity receives. Create,
// read, and update scenarios use the primary row; delete scenarios use the
// delete row, so the two can never collide.
type UUIDRole string

const (
	RolePrimary UUIDRole = "primary"
	RoleDelete  UUIDRole = "delete"
)

// EntityUUID computes the deterministic UUID for an entity's seed row.
func EntityUUID(entity string, ordinal int, role UUIDRole) string {
	name := fmt.Sprintf("%s|%d|%s", entity, ordinal, role)
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

// FKRef records a foreign-key field pointing at another requirement's
// primary UUID.
type FKRef struct {
	Field        string `json:"field"`
	TargetEntity string `json:"target_entity"`
	TargetUUID   string `json:"target_uuid"`
}

// Requirement is the seed specification for one entity.
type Requirement struct {
	EntityName             string   `json:"entity_name"`
	UUIDPrimary            string   `json:"uuid_primary"`
	UUIDDelete             string   `json:"uuid_delete"`
	Fields                 ir.Obj   `json:"fields"`
	FKRefs                 []FKRef  `json:"fk_refs,omitempty"`
	IsNestedChild          bool     `json:"is_nested_child,omitempty"`
	ParentEntity           string   `json:"parent_entity,omitempty"`
	CardinalityMin         int      `json:"cardinality_min"`
	SatisfiedPreconditions []string `json:"satisfied_preconditions,omitempty"`
}

// Plan is the ordered seed plan: parents always precede children.
type Plan struct {
	IRHash       string        `json:"ir_hash"`
	Requirements []Requirement `json:"requirements"`
}

// Requirement returns the requirement for an entity, or false if absent.
func (p *Plan) Requirement(entity string) (*Requirement, bool) {
	for i := range p.Requirements {
		if p.Requirements[i].EntityName == entity {
			return &p.Requirements[i], true
		}
	}
	return nil, false
}

// MarshalCanonical serializes the plan as canonical JSON. This is the
// byte-for-byte reproducible form handed to the deployment harness and
// compared in golden tests.
func (p *Plan) MarshalCanonical() ([]byte, error) {
	reqs := make(ir.List, 0, len(p.Requirements))
	for _, r := range p.Requirements {
		obj := ir.Obj{
			"entity_name":     ir.Str(r.EntityName),
			"uuid_primary":    ir.Str(r.UUIDPrimary),
			"uuid_delete":     ir.Str(r.UUIDDelete),
			"fields":          r.Fields,
			"cardinality_min": ir.Int(int64(r.CardinalityMin)),
		}
		if r.IsNestedChild {
			obj["is_nested_child"] = ir.Bool(true)
			obj["parent_entity"] = ir.Str(r.ParentEntity)
		}
		if len(r.FKRefs) > 0 {
			refs := make(ir.List, 0, len(r.FKRefs))
			for _, ref := range r.FKRefs {
				refs = append(refs, ir.Obj{
					"field":         ir.Str(ref.Field),
					"target_entity": ir.Str(ref.TargetEntity),
					"target_uuid":   ir.Str(ref.TargetUUID),
				})
			}
			obj["fk_refs"] = refs
		}
		if len(r.SatisfiedPreconditions) > 0 {
			pres := make(ir.List, 0, len(r.SatisfiedPreconditions))
			for _, pre := range r.SatisfiedPreconditions {
				pres = append(pres, ir.Str(pre))
			}
			obj["satisfied_preconditions"] = pres
		}
		reqs = append(reqs, obj)
	}
	return ir.MarshalCanonical(ir.Obj{
		"ir_hash":      ir.Str(p.IRHash),
		"requirements": reqs,
	})
}

// CyclicDependencyError reports a generation-order cycle in the entity
// relationship graph. This is an IR defect, not a data defect: it signals
// an upstream compiler error and is always fatal.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic generation dependency: %s", strings.Join(e.Path, " -> "))
}

// IsCyclicDependency reports whether err is (or wraps) a
// CyclicDependencyError.
func IsCyclicDependency(err error) bool {
	var ce *CyclicDependencyError
	return errors.As(err, &ce)
}
