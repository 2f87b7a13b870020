package ir

import (
	"encoding/json"
	"fmt"
)

// Custom unmarshaling for the two struct types carrying a Value interface
// field. Everything else round-trips with the standard decoder.

func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entity      string          `json:"entity"`
		Field       string          `json:"field"`
		Kind        ConstraintKind  `json:"kind"`
		Value       json.RawMessage `json:"value"`
		Enforcement Enforcement     `json:"enforcement"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Entity = raw.Entity
	c.Field = raw.Field
	c.Kind = raw.Kind
	c.Enforcement = raw.Enforcement
	c.Value = nil
	if len(raw.Value) > 0 && string(raw.Value) != "null" {
		v, err := UnmarshalValue(raw.Value)
		if err != nil {
			return err
		}
		c.Value = v
	}
	return nil
}

// UnmarshalJSON decodes an object into Obj using the closed value model,
// so floats and nulls are rejected the same way they are everywhere else.
func (o *Obj) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	obj, ok := v.(Obj)
	if !ok {
		return fmt.Errorf("expected object, got %T", v)
	}
	*o = obj
	return nil
}

// UnmarshalJSON decodes an array into List under the same rules.
func (l *List) UnmarshalJSON(data []byte) error {
	v, err := UnmarshalValue(data)
	if err != nil {
		return err
	}
	list, ok := v.(List)
	if !ok {
		return fmt.Errorf("expected array, got %T", v)
	}
	*l = list
	return nil
}

func (p *Predicate) UnmarshalJSON(data []byte) error {
	var raw struct {
		Entity string          `json:"entity"`
		Field  string          `json:"field"`
		Op     PredicateOp     `json:"op"`
		Value  json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Entity = raw.Entity
	p.Field = raw.Field
	p.Op = raw.Op
	p.Value = nil
	if len(raw.Value) > 0 && string(raw.Value) != "null" {
		v, err := UnmarshalValue(raw.Value)
		if err != nil {
			return err
		}
		p.Value = v
	}
	return nil
}
