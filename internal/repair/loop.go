package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/gate"
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/match"
	"github.com/verdict-engine/verdict/internal/normalize"
)

// Recorder receives loop events for durable storage. Implementations must
// not influence loop behavior; a recorder error aborts the run because a
// partial audit trail is worse than none.
type Recorder interface {
	RecordClassification(iteration int, f ValidationFailure) error
	RecordRepair(iteration int, f ValidationFailure, r Result) error
	RecordReport(report *gate.Report) error
}

// LoopConfig configures one bounded repair run.
type LoopConfig struct {
	Phase         string
	MaxIterations int
	Mode          gate.Mode
	Thresholds    gate.Thresholds
	Arbiter       match.Arbiter
	Synonyms      *normalize.SynonymTable
	MatchConfig   *match.Config
	Recorder      Recorder
	Logger        *slog.Logger
}

const defaultMaxIterations = 5

// LoopResult is the final state of a repair run.
type LoopResult struct {
	// Best is the report of the best iteration seen, which is not
	// necessarily the last one.
	Best *gate.Report

	// BestIteration is the iteration number Best came from.
	BestIteration int

	// Final is the snapshot after the last committed fix set.
	Final *extract.Snapshot

	// Iterations is the number of completed iterations.
	Iterations int

	// ManualItems are unrepairable failures accumulated across all
	// iterations, sorted and deduplicated.
	ManualItems []string

	// SeedDefects are failures that trace to missing seed data rather
	// than generated code.
	SeedDefects []string

	// Converged reports whether the loop stopped because the report
	// passed, as opposed to exhausting its budget or stalling.
	Converged bool
}

// Loop runs the bounded extract-match-validate-repair cycle until the
// report passes, the iteration budget runs out, the trajectory stops
// improving, or the context is cancelled. Budget exhaustion is not an
// error; the best report seen is returned either way. A regression
// (violations present in a later iteration that the earlier one did not
// have) aborts the run with a RegressionError.
func Loop(ctx context.Context, app *ir.ApplicationIR, snapshot *extract.Snapshot, evidence []Evidence, cfg LoopConfig) (*LoopResult, error) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	irHash, err := app.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing application: %w", err)
	}

	normalizer := normalize.New(cfg.Synonyms)
	matchOpts := []match.Option{match.WithLogger(logger)}
	if cfg.MatchConfig != nil {
		matchOpts = append(matchOpts, match.WithConfig(*cfg.MatchConfig))
	}
	if cfg.Arbiter != nil {
		matchOpts = append(matchOpts, match.WithArbiter(cfg.Arbiter))
	}
	engine := match.NewEngine(normalizer.Synonyms(), matchOpts...)
	validator := gate.NewValidator(cfg.Mode,
		gate.WithThresholds(cfg.Thresholds),
		gate.WithValidatorLogger(logger))
	orch := NewOrchestrator(logger)

	stats := scenarioStats(evidence)
	failures := classifyAll(evidence, app)

	result := &LoopResult{Final: snapshot}
	manual := map[string]bool{}
	seedDefects := map[string]bool{}
	var prev *gate.Report

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("repair loop cancelled", "iteration", iter)
			return result, nil
		}

		rules, warnings, err := extract.Run(ctx, logger, result.Final, nil)
		if err != nil {
			return result, fmt.Errorf("iteration %d: extraction: %w", iter, err)
		}
		normalized, normWarnings := normalizer.Normalize(rules)
		warnings = append(warnings, normWarnings...)

		matchReport, err := engine.Match(ctx, app.Validation.Constraints, normalized)
		if err != nil {
			return result, fmt.Errorf("iteration %d: matching: %w", iter, err)
		}

		report, verr := validator.Run(gate.Input{
			Phase:            cfg.Phase,
			IRHash:           irHash,
			Iteration:        iter,
			Scenarios:        stats,
			Complexity:       complexityOf(app),
			RequirementCount: len(app.Validation.Constraints),
			Match:            matchReport,
			Warnings:         warnings,
			ManualItems:      sortedKeys(manual),
		})
		if report != nil {
			if cfg.Recorder != nil {
				if rerr := cfg.Recorder.RecordReport(report); rerr != nil {
					return result, fmt.Errorf("iteration %d: recording report: %w", iter, rerr)
				}
			}
			if prev != nil && gate.DetectRegression(prev, report) {
				result.Iterations = iter
				return result, &gate.RegressionError{Phase: cfg.Phase, Iteration: iter}
			}
			if result.Best == nil || report.Better(result.Best) {
				result.Best = report
				result.BestIteration = iter
			} else if iter > 1 {
				// The trajectory stalled. Keep the best iteration and
				// stop spending budget.
				logger.Info("repair loop stalled",
					"iteration", iter, "best_iteration", result.BestIteration)
				result.Iterations = iter
				return result, nil
			}
			prev = report
		}
		if verr != nil {
			result.Iterations = iter
			return result, verr
		}
		result.Iterations = iter

		if report.Status == gate.StatusPassed || report.Status == gate.StatusPassedWithWarnings {
			result.Converged = true
			return result, nil
		}

		appliedThisIter, err := repairIteration(iter, failures, result, orch, cfg, manual, seedDefects)
		if err != nil {
			return result, err
		}
		if appliedThisIter == 0 {
			logger.Info("no applicable repairs remain", "iteration", iter)
			return result, nil
		}
	}

	logger.Info("iteration budget exhausted",
		"max_iterations", cfg.MaxIterations, "best_iteration", result.BestIteration)
	return result, nil
}

// repairIteration classifies and applies one iteration's fix set, then
// commits the surviving mutations as a single new snapshot.
func repairIteration(iter int, failures []ValidationFailure, result *LoopResult, orch *Orchestrator, cfg LoopConfig, manual, seedDefects map[string]bool) (int, error) {
	pending := result.Final.Files()
	applied := 0
	for _, f := range failures {
		if cfg.Recorder != nil {
			if err := cfg.Recorder.RecordClassification(iter, f); err != nil {
				return applied, fmt.Errorf("iteration %d: recording classification: %w", iter, err)
			}
		}
		res := orch.Repair(f, result.Final, pending)
		if cfg.Recorder != nil {
			if err := cfg.Recorder.RecordRepair(iter, f, res); err != nil {
				return applied, fmt.Errorf("iteration %d: recording repair: %w", iter, err)
			}
		}
		switch res.Outcome {
		case OutcomeApplied:
			applied++
		case OutcomeManual:
			manual[res.Detail] = true
		case OutcomeSeedDefect:
			seedDefects[res.Detail] = true
		}
	}
	result.ManualItems = sortedKeys(manual)
	result.SeedDefects = sortedKeys(seedDefects)
	if applied > 0 {
		result.Final = extract.NewSnapshot(pending)
	}
	return applied, nil
}

// classifyAll converts failed evidence into classified failures,
// preserving evidence order. Passing evidence is skipped.
func classifyAll(evidence []Evidence, app *ir.ApplicationIR) []ValidationFailure {
	var failures []ValidationFailure
	for _, e := range evidence {
		if !e.Failed() {
			continue
		}
		failures = append(failures, ToFailure(e, app))
	}
	return failures
}

func scenarioStats(evidence []Evidence) gate.ScenarioStats {
	stats := gate.ScenarioStats{Total: len(evidence)}
	for _, e := range evidence {
		if e.Failed() {
			stats.Failed++
		} else {
			stats.Passed++
		}
	}
	return stats
}

// complexityOf is the declared behavioral surface of the application:
// every flow step plus every validation constraint.
func complexityOf(app *ir.ApplicationIR) int {
	n := len(app.Validation.Constraints)
	for _, flow := range app.Behavior.Flows {
		n += len(flow.Steps)
	}
	return n
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
