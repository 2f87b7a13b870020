package testutil

import (
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/repair"
)

// PassingEvidence returns an observation whose response matched the
// declared status.
func PassingEvidence(scenario, method, path string, status int) repair.Evidence {
	return repair.Evidence{
		Scenario:       scenario,
		Request:        repair.Request{Method: method, Path: path},
		Response:       repair.Response{Status: status},
		ExpectedStatus: status,
		ProbeStatus:    200,
	}
}

// WrongStatusEvidence returns a failing observation for a declared flow
// step: the transition is valid per the document but the code rejected
// it.
func WrongStatusEvidence(scenario, flow, method, path string, expected, actual int) repair.Evidence {
	return repair.Evidence{
		Scenario:       scenario,
		Flow:           flow,
		Request:        repair.Request{Method: method, Path: path},
		Response:       repair.Response{Status: actual},
		ExpectedStatus: expected,
		ProbeStatus:    200,
	}
}

// MissingResourceEvidence returns a failing observation whose existence
// probe came back not-found, i.e. a seed-data defect.
func MissingResourceEvidence(scenario, method, path string, expected int) repair.Evidence {
	return repair.Evidence{
		Scenario:       scenario,
		Request:        repair.Request{Method: method, Path: path},
		Response:       repair.Response{Status: 404},
		ExpectedStatus: expected,
		ProbeStatus:    404,
	}
}

// StaleStateEvidence returns a failing observation where the response
// succeeded but a declared postcondition field kept its before value.
func StaleStateEvidence(scenario, flow, method, path string, entity, field string, value ir.Value) repair.Evidence {
	obj := ir.Obj{field: value}
	return repair.Evidence{
		Scenario:       scenario,
		Flow:           flow,
		Request:        repair.Request{Method: method, Path: path},
		Response:       repair.Response{Status: 200},
		ExpectedStatus: 200,
		ProbeStatus:    200,
		Before:         map[string]ir.Obj{entity: obj},
		After:          map[string]ir.Obj{entity: obj},
		AssertionError: entity + "." + field + " did not change",
	}
}
