package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for content-addressed identity. The version suffix
// enables future algorithm migration without colliding with old hashes.
const (
	DomainIR       = "verdict/ir/v1"
	DomainFix      = "verdict/fix/v1"
	DomainPair     = "verdict/pair/v1"
	DomainSnapshot = "verdict/snapshot/v1"
	DomainSeed     = "verdict/seed/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content-addressed identity of the whole IR document.
// Used to stamp reports and ledger rows so judgments are traceable to the
// exact IR that produced them.
func (a *ApplicationIR) Hash() (string, error) {
	obj, err := a.canonicalObj()
	if err != nil {
		return "", err
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ir hash: %w", err)
	}
	return hashWithDomain(DomainIR, canonical), nil
}

// FixFingerprint computes the identity of a repair action. A fingerprint
// already present in the run's applied-fix set is never reapplied.
func FixFingerprint(file, location, fixKind, payload string) string {
	obj := Obj{
		"file":     Str(file),
		"location": Str(location),
		"fix_kind": Str(fixKind),
		"payload":  Str(payload),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		// All inputs are strings; canonical marshal of a string-only
		// object cannot fail.
		panic(fmt.Sprintf("fix fingerprint: %v", err))
	}
	return hashWithDomain(DomainFix, canonical)
}

// PairHash identifies a (constraint, rule) pair for arbitration caching.
// Identical ambiguous pairs hit the cache within and across iterations.
func PairHash(constraintKey, ruleKey RuleKey) string {
	obj := Obj{
		"constraint": Obj{
			"entity": Str(constraintKey.Entity),
			"field":  Str(constraintKey.Field),
			"kind":   Str(string(constraintKey.Kind)),
		},
		"rule": Obj{
			"entity": Str(ruleKey.Entity),
			"field":  Str(ruleKey.Field),
			"kind":   Str(string(ruleKey.Kind)),
		},
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		panic(fmt.Sprintf("pair hash: %v", err))
	}
	return hashWithDomain(DomainPair, canonical)
}

// SnapshotHash computes the identity of a generated-code snapshot from its
// sorted (path, content) pairs. Two snapshots with the same hash are
// byte-identical.
func SnapshotHash(files map[string]string) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	h.Write([]byte(DomainSnapshot))
	h.Write([]byte{0x00})
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0x00})
		h.Write([]byte(files[p]))
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalObj flattens the IR into canonical-JSON-safe values. Only the
// identity-bearing parts are hashed; derived conveniences are excluded.
func (a *ApplicationIR) canonicalObj() (Obj, error) {
	entities := make(List, 0, len(a.Domain.Entities))
	for _, e := range a.Domain.Entities {
		attrs := make(List, 0, len(e.Attributes))
		for _, at := range e.Attributes {
			attrs = append(attrs, Obj{
				"name":     Str(at.Name),
				"type":     Str(at.Type),
				"required": Bool(at.Required),
			})
		}
		entities = append(entities, Obj{"name": Str(e.Name), "attributes": attrs})
	}

	rels := make(List, 0, len(a.Domain.Relationships))
	for _, r := range a.Domain.Relationships {
		rels = append(rels, Obj{
			"parent":            Str(r.Parent),
			"child":             Str(r.Child),
			"foreign_key_field": Str(r.ForeignKeyField),
			"nested":            Bool(r.Nested),
			"path_segment":      Str(r.PathSegment),
		})
	}

	constraints := make(List, 0, len(a.Validation.Constraints))
	for _, c := range a.Validation.Constraints {
		obj := Obj{
			"entity": Str(c.Entity),
			"field":  Str(c.Field),
			"kind":   Str(string(c.Kind)),
		}
		if c.Value != nil {
			obj["value"] = c.Value
		}
		constraints = append(constraints, obj)
	}

	return Obj{
		"version":       Str(a.Version),
		"name":          Str(a.Name),
		"entities":      entities,
		"relationships": rels,
		"constraints":   constraints,
	}, nil
}
