// Package cli wires the engine into the verdict command tree: seed
// derivation, one-shot compliance checks, the bounded repair loop, and
// ledger-backed run reports.
package cli
