package repair

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/verdict-engine/verdict/internal/ir"
)

// Classify determines the failure kind for one evidence bundle.
//
// Rules, applied in order:
//
//  1. If the direct existence probe returned not-found, the failing
//     request depended on a resource that did not exist:
//     MISSING_PRECONDITION. Independent of what the resource represents.
//  2. Else if the IR's flow model declares the attempted transition
//     valid but the observed response is an error status:
//     WRONG_STATUS_CODE.
//  3. Else if the IR declares a postcondition (a field on some entity
//     must change) and the before/after snapshots show no change:
//     MISSING_SIDE_EFFECT.
//
// Anything else is UNKNOWN and surfaces for human review.
func Classify(e Evidence, app *ir.ApplicationIR) ir.FailureKind {
	if e.ProbeStatus == http.StatusNotFound {
		return ir.FailureMissingPrecondition
	}

	if flow, ok := flowByName(app, e.Flow); ok {
		if flowDeclaresStep(flow, e.Request.Method, e.Request.Path) && e.Response.Status >= 400 {
			return ir.FailureWrongStatusCode
		}
		if kind, ok := classifyPostconditions(flow, e); ok {
			return kind
		}
	}

	return ir.FailureUnknown
}

// ToFailure builds the ValidationFailure record for a classified bundle,
// attaching the related constraint when the failure traces to one.
func ToFailure(e Evidence, app *ir.ApplicationIR) ValidationFailure {
	f := ValidationFailure{
		Kind:             Classify(e, app),
		Endpoint:         fmt.Sprintf("%s %s", e.Request.Method, e.Request.Path),
		Expected:         e.ExpectedStatus,
		Actual:           e.Response.Status,
		Payload:          e.Request.Body,
		ResponseSnapshot: e.Response.Body,
		RelatedFlow:      e.Flow,
	}

	if flow, ok := flowByName(app, e.Flow); ok {
		if pred, ok := unchangedPostcondition(flow, e); ok {
			// The constraint governing the unchanged field, if declared,
			// selects the repair template.
			if cs := app.Validation.ConstraintsFor(pred.Entity, pred.Field); len(cs) > 0 {
				c := cs[0]
				f.RelatedConstraint = &c
			}
		}
	}
	return f
}

func flowByName(app *ir.ApplicationIR, name string) (ir.Flow, bool) {
	if name == "" {
		return ir.Flow{}, false
	}
	for _, flow := range app.Behavior.Flows {
		if flow.Name == name {
			return flow, true
		}
	}
	return ir.Flow{}, false
}

// flowDeclaresStep reports whether the flow's ordered steps include the
// attempted endpoint, i.e. the IR declares the transition valid.
func flowDeclaresStep(flow ir.Flow, method, path string) bool {
	ref := fmt.Sprintf("%s %s", method, path)
	for _, step := range flow.Steps {
		if step.Endpoint == ref {
			return true
		}
	}
	return false
}

func classifyPostconditions(flow ir.Flow, e Evidence) (ir.FailureKind, bool) {
	if _, ok := unchangedPostcondition(flow, e); ok {
		return ir.FailureMissingSideEffect, true
	}
	return ir.FailureUnknown, false
}

// unchangedPostcondition returns the first declared postcondition whose
// field shows no change between the before and after snapshots.
func unchangedPostcondition(flow ir.Flow, e Evidence) (ir.Predicate, bool) {
	for _, post := range flow.Postconditions {
		if post.Op != ir.OpChanged {
			continue
		}
		before, beforeOK := e.Before[post.Entity]
		after, afterOK := e.After[post.Entity]
		if !beforeOK || !afterOK {
			continue
		}
		if reflect.DeepEqual(before[post.Field], after[post.Field]) {
			return post, true
		}
	}
	return ir.Predicate{}, false
}
