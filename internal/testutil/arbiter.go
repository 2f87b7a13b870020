package testutil

import (
	"context"
	"sync"

	"github.com/verdict-engine/verdict/internal/match"
)

// FixedArbiter answers every arbitration with a canned verdict and
// counts how many times it was consulted. Safe for concurrent use.
type FixedArbiter struct {
	Verdict bool
	Err     error

	mu    sync.Mutex
	calls int
}

// Judge returns the canned verdict.
func (a *FixedArbiter) Judge(_ context.Context, _ match.Pairing) (bool, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.Err != nil {
		return false, a.Err
	}
	return a.Verdict, nil
}

// Calls reports how many judgments were requested.
func (a *FixedArbiter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
