package match

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/verdict-engine/verdict/internal/ir"
)

// Pairing is the ambiguous pair submitted for arbitration.
type Pairing struct {
	Constraint ir.Constraint
	Rule       ir.NormalizedRule
	Score      float64
}

// Hash returns the content hash identifying this pair for caching.
func (p Pairing) Hash() string {
	return ir.PairHash(p.Constraint.Key(), p.Rule.Key())
}

// Arbiter delivers a final accept/reject for an ambiguous pair.
//
// Implementations invoke an external service with latency and cost, so
// production arbiters are always wrapped in a Pool.
type Arbiter interface {
	Judge(ctx context.Context, p Pairing) (bool, error)
}

// ArbiterFunc adapts a function to the Arbiter interface.
type ArbiterFunc func(ctx context.Context, p Pairing) (bool, error)

func (f ArbiterFunc) Judge(ctx context.Context, p Pairing) (bool, error) {
	return f(ctx, p)
}

// defaultPoolSize bounds concurrent oracle calls.
const defaultPoolSize = 4

// defaultCacheSize bounds the verdict cache. Identical ambiguous pairs
// recur across repair iterations; caching by content hash keeps repeat
// calls off the wire within and across iterations.
const defaultCacheSize = 1024

// Pool wraps an Arbiter with a bounded concurrent-request budget and an
// LRU verdict cache keyed by the pair's content hash.
type Pool struct {
	inner Arbiter
	sem   *semaphore.Weighted
	cache *lru.Cache[string, bool]
}

// NewPool creates an arbitration pool. size <= 0 uses the default bound.
func NewPool(inner Arbiter, size int) (*Pool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	cache, err := lru.New[string, bool](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("arbiter cache: %w", err)
	}
	return &Pool{
		inner: inner,
		sem:   semaphore.NewWeighted(int64(size)),
		cache: cache,
	}, nil
}

// Judge consults the cache, then acquires a pool slot and delegates.
// Verdicts are cached on success only; errors are never cached.
func (p *Pool) Judge(ctx context.Context, pairing Pairing) (bool, error) {
	key := pairing.Hash()
	if verdict, ok := p.cache.Get(key); ok {
		return verdict, nil
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("arbitration pool: %w", err)
	}
	defer p.sem.Release(1)

	// Re-check after the wait: an identical pair may have been judged
	// while this one queued.
	if verdict, ok := p.cache.Get(key); ok {
		return verdict, nil
	}

	verdict, err := p.inner.Judge(ctx, pairing)
	if err != nil {
		return false, err
	}
	p.cache.Add(key, verdict)
	return verdict, nil
}
