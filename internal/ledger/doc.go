// Package ledger persists the audit trail of compliance runs: failure
// classifications, repair attempts with their fingerprints and outcomes,
// and per-iteration report summaries.
//
// The ledger is write-mostly. The repair loop appends through a
// RunRecorder; reporting commands read back with the List and count
// helpers. Nothing in the pipeline reads the ledger to make decisions,
// so a lost ledger never changes engine behavior.
package ledger
