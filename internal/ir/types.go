package ir

// ApplicationIR is the root of the intermediate representation. It is
// produced by the external spec compiler and consumed read-only here.
type ApplicationIR struct {
	Version    string          `json:"version"`
	Name       string          `json:"name"`
	Domain     DomainModel     `json:"domain"`
	API        APIModel        `json:"api"`
	Behavior   BehaviorModel   `json:"behavior"`
	Validation ValidationModel `json:"validation"`
	Tests      TestsModel      `json:"tests"`
}

// DomainModel describes entities and their relationships.
type DomainModel struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// Entity is a domain entity with typed attributes.
type Entity struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute is a typed entity field.
type Attribute struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "string", "int", "bool", "uuid", "timestamp"
	Required bool   `json:"required,omitempty"`
}

// Relationship links a child entity to its parent via a foreign key.
//
// Nested resources are IR-flagged, never inferred from names: the path
// segment, foreign-key field, and child-id parameter are all explicit.
type Relationship struct {
	Parent          string         `json:"parent"`
	Child           string         `json:"child"`
	ForeignKeyField string         `json:"foreign_key_field"`
	Nested          bool           `json:"nested,omitempty"`
	PathSegment     string         `json:"path_segment,omitempty"`
	ChildIDParam    string         `json:"child_id_param,omitempty"`
	FieldMappings   []FieldMapping `json:"field_mappings,omitempty"`
}

// FieldMapping declares an auto-populated child field copied from a
// referenced entity at creation time (e.g. a line item's unit price
// mirrors the referenced product's price).
type FieldMapping struct {
	TargetField  string `json:"target_field"`
	SourceEntity string `json:"source_entity"`
	SourceField  string `json:"source_field"`
}

// APIModel describes the endpoint surface.
type APIModel struct {
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is a single HTTP operation.
type Endpoint struct {
	Method         string `json:"method"`
	Path           string `json:"path"`
	Entity         string `json:"entity,omitempty"`
	RequestSchema  string `json:"request_schema,omitempty"`
	ResponseSchema string `json:"response_schema,omitempty"`
	SuccessStatus  int    `json:"success_status,omitempty"`
}

// BehaviorModel holds the flows.
type BehaviorModel struct {
	Flows []Flow `json:"flows"`
}

// Flow is an ordered behavioral scenario with entity-scoped predicates.
// Predicates are structured, never free text.
type Flow struct {
	Name           string      `json:"name"`
	Steps          []FlowStep  `json:"steps"`
	Preconditions  []Predicate `json:"preconditions,omitempty"`
	Postconditions []Predicate `json:"postconditions,omitempty"`
	Invariants     []Predicate `json:"invariants,omitempty"`
}

// FlowStep is one step of a flow, referencing an endpoint.
type FlowStep struct {
	Endpoint string `json:"endpoint"` // "METHOD path" reference
	Action   string `json:"action,omitempty"`
}

// Predicate is an entity-scoped condition over a single field.
type Predicate struct {
	Entity string      `json:"entity"`
	Field  string      `json:"field"`
	Op     PredicateOp `json:"op"`
	Value  Value       `json:"value,omitempty"`
}

// ValidationModel holds declared constraints.
type ValidationModel struct {
	Constraints []Constraint `json:"constraints"`
}

// Constraint is a declared validation rule on an entity field.
type Constraint struct {
	Entity      string         `json:"entity"`
	Field       string         `json:"field"`
	Kind        ConstraintKind `json:"kind"`
	Value       Value          `json:"value,omitempty"`
	Enforcement Enforcement    `json:"enforcement,omitempty"`
}

// Key returns the canonical identity triple of the constraint.
func (c Constraint) Key() RuleKey {
	return RuleKey{Entity: c.Entity, Field: c.Field, Kind: c.Kind}
}

// TestsModel carries seed hints and test suites from the IR.
type TestsModel struct {
	SeedHints       []SeedHint      `json:"seed_hints,omitempty"`
	EndpointSuites  []EndpointSuite `json:"endpoint_suites,omitempty"`
	NestedResources []string        `json:"nested_resources,omitempty"` // child entity names
}

// SeedHint suggests a minimum population for an entity.
type SeedHint struct {
	Entity   string `json:"entity"`
	MinCount int    `json:"min_count"`
}

// EndpointSuite names the scenarios expected for one endpoint.
type EndpointSuite struct {
	Endpoint  string   `json:"endpoint"`
	Scenarios []string `json:"scenarios"`
}

// Entity returns the named entity, or false if absent.
func (d DomainModel) Entity(name string) (Entity, bool) {
	for _, e := range d.Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Attribute returns the named attribute of an entity, or false if absent.
func (e Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// ConstraintsFor returns all declared constraints for an entity field.
func (v ValidationModel) ConstraintsFor(entity, field string) []Constraint {
	var out []Constraint
	for _, c := range v.Constraints {
		if c.Entity == entity && c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// RelationshipsTo returns the relationships in which the entity is the child.
func (d DomainModel) RelationshipsTo(child string) []Relationship {
	var out []Relationship
	for _, r := range d.Relationships {
		if r.Child == child {
			out = append(out, r)
		}
	}
	return out
}
