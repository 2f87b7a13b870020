// Package extract pulls raw validation facts out of a generated-code
// snapshot.
//
// Four independent extractors each read their own view of the snapshot
// (schema shapes, code structure, contract documents, business-logic
// patterns) and emit raw rules with un-normalized entity/field/kind
// labels. Extractor runs share no mutable state, so the fan-out across
// (extractor, file) pairs is embarrassingly parallel; results are joined
// before normalization, which needs the complete set for its global
// semantic merge.
//
// The extractors are language-agnostic by construction: they recognize
// declarative shapes (column clauses, guard comparisons, schema keywords,
// transition tables), never the grammar of a particular source language.
package extract
