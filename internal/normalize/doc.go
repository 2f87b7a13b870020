// Package normalize maps raw extracted vocabulary onto canonical names
// and collapses semantic duplicates.
//
// All lexical heuristics in the engine live here, in the synonym table
// and the kind taxonomy. Nothing downstream (matching tiers 1-3 excepted,
// which consult the same table) is allowed to reason about vocabulary:
// runtime failure classification in particular works from status codes
// and snapshots only.
package normalize
