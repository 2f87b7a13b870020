// Package seed derives the deterministic initial-state plan from the IR.
//
// Derivation is a pure function of the IR: no I/O, no randomness, no
// clock. The same IR always yields a byte-identical SeedPlan, which the
// external deployment harness materializes into database state and the
// repair orchestrator uses to interpret "before" snapshots.
package seed
