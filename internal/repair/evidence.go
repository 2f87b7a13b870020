package repair

import (
	"github.com/verdict-engine/verdict/internal/ir"
)

// Request is the executed request of one scenario.
type Request struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Body   ir.Obj `json:"body,omitempty"`
}

// Response is the observed response.
type Response struct {
	Status int    `json:"status"`
	Body   ir.Obj `json:"body,omitempty"`
}

// Evidence is the runtime evidence bundle for one executed scenario,
// produced by the external smoke-execution harness.
type Evidence struct {
	Scenario string   `json:"scenario"`
	Flow     string   `json:"flow,omitempty"`
	Request  Request  `json:"request"`
	Response Response `json:"response"`

	// ExpectedStatus is the status the IR's endpoint model declares for
	// the scenario.
	ExpectedStatus int `json:"expected_status"`

	// ProbeStatus is the result of a direct existence probe: a read of
	// the resource the failing request referenced. 404 means the
	// precondition resource did not exist.
	ProbeStatus int `json:"probe_status,omitempty"`

	// Before and After are entity-keyed state snapshots taken around the
	// request.
	Before map[string]ir.Obj `json:"before,omitempty"`
	After  map[string]ir.Obj `json:"after,omitempty"`

	// AssertionError is set by the harness when a scenario assertion
	// failed despite the expected status, e.g. a state snapshot that
	// should have changed and did not.
	AssertionError string `json:"assertion_error,omitempty"`
}

// Failed reports whether the scenario diverged from expectation.
func (e Evidence) Failed() bool {
	return e.Response.Status != e.ExpectedStatus || e.AssertionError != ""
}

// ValidationFailure is one classified divergence. Created per failing
// scenario, consumed once by the orchestrator, and discarded after a
// repair attempt is recorded.
type ValidationFailure struct {
	Kind              ir.FailureKind `json:"kind"`
	Endpoint          string         `json:"endpoint"`
	Expected          int            `json:"expected"`
	Actual            int            `json:"actual"`
	Payload           ir.Obj         `json:"payload,omitempty"`
	ResponseSnapshot  ir.Obj         `json:"response_snapshot,omitempty"`
	RelatedFlow       string         `json:"related_flow,omitempty"`
	RelatedConstraint *ir.Constraint `json:"related_constraint,omitempty"`
}
