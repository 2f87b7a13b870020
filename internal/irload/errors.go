package irload

import (
	"fmt"

	"github.com/verdict-engine/verdict/internal/ir"
)

// Loader error codes.
const (
	ErrCodeGeneric       = "L001" // Generic/unknown error
	ErrCodeScanError     = "L002" // Directory scan error
	ErrCodeNoFiles       = "L003" // No document files found
	ErrCodeNotFound      = "L004" // Directory not found
	ErrCodeLoadFailed    = "L005" // CUE load failed
	ErrCodeBuildFailed   = "L006" // CUE build/unify failed
	ErrCodeDecodeFailed  = "L007" // JSON decode into IR failed
	ErrCodeNoApplication = "L008" // No application field present
)

// LoadError is one loader failure with its code.
type LoadError struct {
	Code    string
	Message string
	Field   string // IR field path for validation errors, empty otherwise
}

func (e *LoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// validationError keeps the IR validator's own code so document authors
// can look defects up in one place.
func validationError(ve ir.ValidationError) *LoadError {
	return &LoadError{Code: ve.Code, Message: ve.Message, Field: ve.Field}
}
