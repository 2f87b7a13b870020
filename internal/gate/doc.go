// Package gate evaluates extraction and matching results through tiered
// contracts and produces the compliance report that gates the pipeline.
//
// One validator run per pipeline phase walks a fixed state machine:
//
//	PENDING -> STRUCTURAL_CHECK -> SEMANTIC_CHECK -> QUALITY_CHECK ->
//	{PASSED, PASSED_WITH_WARNINGS, FAILED}
//
// STRUCTURAL checks complete (and abort on failure in STRICT/LENIENT
// modes) before SEMANTIC checks run; SEMANTIC before QUALITY. The
// enforcement mode is a single run-wide value, never changed mid-run.
//
// Reports are immutable once emitted; each iteration produces a new one,
// and reports are compared across iterations to detect regressions.
package gate
