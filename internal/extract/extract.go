package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/verdict-engine/verdict/internal/ir"
)

// RawRule is an un-normalized fact produced by one extractor. Entity,
// field, and kind labels carry whatever vocabulary the generated code
// used; the normalizer maps them onto canonical names.
type RawRule struct {
	Entity     string   `json:"entity"`
	Field      string   `json:"field"`
	RawKind    string   `json:"raw_kind"`
	Value      ir.Value `json:"value,omitempty"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
	File       string   `json:"file"`
}

// Warning records a fact that was seen but could not be kept, e.g. a rule
// with no entity context. Warnings are surfaced, never silently dropped:
// unattributed rules would poison coverage metrics if kept, and hidden
// drops would mask extractor defects.
type Warning struct {
	Source  string `json:"source"`
	File    string `json:"file"`
	Message string `json:"message"`
}

// Extractor produces raw rules from a single file.
type Extractor interface {
	// Name identifies the extractor in rule provenance.
	Name() string
	// ExtractFile scans one file and returns raw rules. A nil slice with
	// no error means the file is out of scope for this extractor.
	ExtractFile(ctx context.Context, path, content string) ([]RawRule, []Warning, error)
}

// DefaultExtractors returns the standard extractor set.
func DefaultExtractors() []Extractor {
	return []Extractor{
		&SchemaExtractor{},
		&CodeExtractor{},
		&ContractExtractor{},
		&LogicExtractor{},
	}
}

// Run fans extraction out across every (extractor, file) pair and joins
// the results. Rules lacking an entity label are converted to warnings
// here, in one place, regardless of which extractor leaked them.
//
// Output ordering is deterministic: sorted by (source, file, entity,
// field, raw kind) after the join.
func Run(ctx context.Context, logger *slog.Logger, snapshot *Snapshot, extractors []Extractor) ([]RawRule, []Warning, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}

	var mu sync.Mutex
	var rules []RawRule
	var warnings []Warning

	g, gctx := errgroup.WithContext(ctx)
	for _, ex := range extractors {
		for _, path := range snapshot.Paths() {
			content, _ := snapshot.Content(path)
			g.Go(func() error {
				rs, ws, err := ex.ExtractFile(gctx, path, content)
				if err != nil {
					return fmt.Errorf("extractor %s on %s: %w", ex.Name(), path, err)
				}
				mu.Lock()
				defer mu.Unlock()
				for _, r := range rs {
					if r.Entity == "" {
						warnings = append(warnings, Warning{
							Source:  ex.Name(),
							File:    path,
							Message: fmt.Sprintf("dropped rule for field %q: no entity context", r.Field),
						})
						continue
					}
					rules = append(rules, r)
				}
				warnings = append(warnings, ws...)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.RawKind < b.RawKind
	})
	sort.Slice(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Message < b.Message
	})

	logger.Debug("extraction complete",
		"snapshot", snapshot.Hash()[:12],
		"rules", len(rules),
		"warnings", len(warnings))

	return rules, warnings, nil
}
