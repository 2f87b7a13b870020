// Package match computes equivalence between IR-declared constraints and
// normalized extracted rules.
//
// Matching proceeds in ascending cost and descending confidence order per
// pair, stopping at the first success: exact, normalized, synonym-table,
// string similarity, and finally arbitration by an external oracle for
// the ambiguous band where naive similarity is unreliable. Unmatched IR
// constraints become missing (and drive tier failures downstream);
// unmatched extracted rules become extra, which is informational only --
// surplus validation indicates defensive code, not non-compliance.
package match
