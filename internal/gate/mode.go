package gate

import "fmt"

// Mode is the run-wide enforcement strictness.
type Mode string

const (
	// ModeStrict aborts on STRUCTURAL failure, warns on SEMANTIC failure,
	// and marks the run failed on QUALITY failure.
	ModeStrict Mode = "STRICT"

	// ModeLenient aborts on STRUCTURAL failure; SEMANTIC and QUALITY
	// failures only log and mark the run completed-with-warnings.
	ModeLenient Mode = "LENIENT"

	// ModeResearch never aborts; all failures are logged for offline
	// analysis and the run proceeds with degraded confidence.
	ModeResearch Mode = "RESEARCH"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeLenient, ModeResearch:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be STRICT, LENIENT, or RESEARCH", s)
	}
}

// abortsOnStructural reports whether a STRUCTURAL failure stops the run.
func (m Mode) abortsOnStructural() bool {
	return m != ModeResearch
}

// failsOnQuality reports whether a QUALITY shortfall fails the run.
func (m Mode) failsOnQuality() bool {
	return m == ModeStrict
}
