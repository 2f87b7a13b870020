package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/normalize"
)

// Tier identifies which strategy matched a pair.
type Tier string

const (
	TierExact      Tier = "exact"
	TierNormalized Tier = "normalized"
	TierSynonym    Tier = "synonym"
	TierSimilarity Tier = "similarity"
	TierArbitrated Tier = "arbitrated"
)

// Confidence assigned by the fixed tiers. Tier 4 reports the raw
// similarity score instead.
const (
	confidenceExact      = 1.0
	confidenceNormalized = 0.95
	confidenceSynonym    = 0.90
)

// Config holds the tunable thresholds. The similarity band defaults
// (0.5-0.8) trade arbitration cost against false-negative rate; they are
// configuration, not invariants, and tests override them freely.
type Config struct {
	HighThreshold float64 // accept similarity outright at or above this
	LowThreshold  float64 // escalate to arbitration at or above this
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{HighThreshold: 0.8, LowThreshold: 0.5}
}

// Pair is one matched (constraint, rule) pair with its provenance.
type Pair struct {
	Constraint ir.Constraint     `json:"constraint"`
	Rule       ir.NormalizedRule `json:"rule"`
	Tier       Tier              `json:"tier"`
	Confidence float64           `json:"confidence"`
}

// Report partitions the match outcome.
type Report struct {
	Matched []Pair              `json:"matched"`
	Missing []ir.Constraint     `json:"missing"`
	Extra   []ir.NormalizedRule `json:"extra"`
}

// Coverage returns matched / declared, or 1.0 when nothing is declared.
func (r *Report) Coverage() float64 {
	total := len(r.Matched) + len(r.Missing)
	if total == 0 {
		return 1.0
	}
	return float64(len(r.Matched)) / float64(total)
}

// Engine runs the tiered matching strategy.
type Engine struct {
	cfg      Config
	synonyms *normalize.SynonymTable
	arbiter  Arbiter // nil means tier 5 is unavailable
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig overrides the threshold configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithArbiter installs the tier-5 arbitration oracle. Without one,
// ambiguous pairs are conservatively treated as unmatched.
func WithArbiter(a Arbiter) Option {
	return func(e *Engine) { e.arbiter = a }
}

// WithLogger installs a logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a matching engine sharing the normalizer's synonym
// table, so tiers 2-3 work from the same equivalence classes extraction
// was normalized with.
func NewEngine(synonyms *normalize.SynonymTable, opts ...Option) *Engine {
	e := &Engine{
		cfg:      DefaultConfig(),
		synonyms: synonyms,
		logger:   slog.New(slog.DiscardHandler),
	}
	if e.synonyms == nil {
		e.synonyms = normalize.DefaultSynonyms()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Match pairs IR constraints with extracted rules.
//
// Each rule matches at most one constraint; consumed rules leave the
// candidate pool. Constraints are processed in declaration order, rules
// in normalized order, so the outcome is deterministic for a given input.
func (e *Engine) Match(ctx context.Context, constraints []ir.Constraint, rules []ir.NormalizedRule) (*Report, error) {
	report := &Report{}
	consumed := make([]bool, len(rules))

	for _, c := range constraints {
		pair, idx, err := e.matchOne(ctx, c, rules, consumed)
		if err != nil {
			return nil, err
		}
		if pair == nil {
			report.Missing = append(report.Missing, c)
			continue
		}
		consumed[idx] = true
		report.Matched = append(report.Matched, *pair)
	}

	for i, r := range rules {
		if !consumed[i] {
			report.Extra = append(report.Extra, r)
		}
	}
	sort.Slice(report.Extra, func(i, j int) bool {
		a, b := report.Extra[i].Key(), report.Extra[j].Key()
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Kind < b.Kind
	})

	e.logger.Debug("matching complete",
		"matched", len(report.Matched),
		"missing", len(report.Missing),
		"extra", len(report.Extra))

	return report, nil
}

// matchOne runs the tiers for a single constraint against the unconsumed
// rules, stopping at the first success.
func (e *Engine) matchOne(ctx context.Context, c ir.Constraint, rules []ir.NormalizedRule, consumed []bool) (*Pair, int, error) {
	// Tier 1: exact key equality.
	for i, r := range rules {
		if consumed[i] {
			continue
		}
		if r.Entity == c.Entity && r.Field == c.Field && r.Kind == c.Kind {
			return &Pair{Constraint: c, Rule: r, Tier: TierExact, Confidence: confidenceExact}, i, nil
		}
	}

	// Tier 2: canonical-key folding.
	cEntity := normalize.CanonicalKey(c.Entity)
	cField := normalize.CanonicalKey(c.Field)
	for i, r := range rules {
		if consumed[i] || r.Kind != c.Kind {
			continue
		}
		if normalize.CanonicalKey(r.Entity) == cEntity && normalize.CanonicalKey(r.Field) == cField {
			return &Pair{Constraint: c, Rule: r, Tier: TierNormalized, Confidence: confidenceNormalized}, i, nil
		}
	}

	// Tier 3: synonym-table equivalence.
	for i, r := range rules {
		if consumed[i] || r.Kind != c.Kind {
			continue
		}
		if e.synonyms.Entity(r.Entity) == e.synonyms.Entity(c.Entity) &&
			e.synonyms.SameField(r.Field, c.Field) {
			return &Pair{Constraint: c, Rule: r, Tier: TierSynonym, Confidence: confidenceSynonym}, i, nil
		}
	}

	// Tiers 4 and 5: similarity scoring over the remaining same-kind,
	// same-entity candidates, best score first.
	type candidate struct {
		idx   int
		score float64
	}
	var candidates []candidate
	for i, r := range rules {
		if consumed[i] || r.Kind != c.Kind {
			continue
		}
		if e.synonyms.Entity(r.Entity) != e.synonyms.Entity(c.Entity) {
			continue
		}
		if score := fieldSimilarity(c.Field, r.Field); score >= e.cfg.LowThreshold {
			candidates = append(candidates, candidate{idx: i, score: score})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].idx < candidates[j].idx
	})

	for _, cand := range candidates {
		r := rules[cand.idx]
		if cand.score >= e.cfg.HighThreshold {
			return &Pair{Constraint: c, Rule: r, Tier: TierSimilarity, Confidence: cand.score}, cand.idx, nil
		}

		// Ambiguous band: naive similarity is unreliable for
		// domain-specific renamings, and synonym tables cannot enumerate
		// every domain's vocabulary. Ask the oracle.
		if e.arbiter == nil {
			continue
		}
		accepted, err := e.arbiter.Judge(ctx, Pairing{Constraint: c, Rule: r, Score: cand.score})
		if err != nil {
			return nil, -1, fmt.Errorf("arbitration for %s.%s: %w", c.Entity, c.Field, err)
		}
		if accepted {
			return &Pair{Constraint: c, Rule: r, Tier: TierArbitrated, Confidence: cand.score}, cand.idx, nil
		}
	}

	return nil, -1, nil
}
