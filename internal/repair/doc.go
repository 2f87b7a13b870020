// Package repair classifies runtime validation failures against IR
// expectations and drives idempotent repair application.
//
// Classification works from existence probes, status codes, and
// before/after state snapshots only -- never from field-name vocabulary --
// so it remains valid across arbitrary application domains.
//
// Repairs are deterministic template applications. Every fix carries a
// content-derived fingerprint; a fingerprint already in the run's
// applied set is never reapplied, and a transform whose structural
// normalization leaves the file unchanged is recorded as already
// satisfied rather than applied. The outer loop is bounded by an
// iteration budget and terminates early when the compliance trajectory
// stops improving, reporting the best iteration rather than the last.
package repair
