package gate

import (
	"errors"
	"fmt"
)

// StructuralDefect means required phase data is absent or malformed. It
// is always fatal to the current phase; only RESEARCH mode proceeds past
// it, with degraded confidence.
type StructuralDefect struct {
	Phase      string
	Violations []Violation
}

func (e *StructuralDefect) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("structural defect in phase %s: %s", e.Phase, e.Violations[0].Message)
	}
	return fmt.Sprintf("structural defect in phase %s: %d violations", e.Phase, len(e.Violations))
}

// IsStructuralDefect reports whether err is (or wraps) a StructuralDefect.
func IsStructuralDefect(err error) bool {
	var sd *StructuralDefect
	return errors.As(err, &sd)
}

// RegressionError means an iteration's violation set is not a subset of
// the previous iteration's. Hard stop regardless of mode.
type RegressionError struct {
	Phase     string
	Iteration int
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("compliance regression in phase %s at iteration %d", e.Phase, e.Iteration)
}

// IsRegression reports whether err is (or wraps) a RegressionError.
func IsRegression(err error) bool {
	var re *RegressionError
	return errors.As(err, &re)
}
