package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdict-engine/verdict/internal/gate"
	"github.com/verdict-engine/verdict/internal/irload"
	"github.com/verdict-engine/verdict/internal/ledger"
	"github.com/verdict-engine/verdict/internal/match"
	"github.com/verdict-engine/verdict/internal/repair"
)

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	checkOpts := &checkOptions{}
	var (
		maxIterations int
		outDir        string
		arbitrate     bool
	)

	cmd := &cobra.Command{
		Use:   "repair <document-dir> <code-dir>",
		Short: "Repair mechanical divergences through the bounded fix loop",
		Long: `Run the extract-match-gate cycle repeatedly, applying templated
fixes between iterations until the gate passes or the budget runs out.
The input directory is never modified; the repaired snapshot is written
to --out, or discarded after reporting when --out is empty.

Evidence is required: repairs are driven by observed failures, not by
static analysis alone.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(rootOpts, checkOpts, args[0], args[1], maxIterations, outDir, arbitrate, cmd)
		},
	}

	addCheckFlags(cmd, checkOpts)
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 5, "iteration budget for the fix loop")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory to write the repaired code to")
	cmd.Flags().BoolVar(&arbitrate, "arbitrate", false, "enable semantic arbitration (requires ANTHROPIC_API_KEY)")

	return cmd
}

func runRepair(rootOpts *RootOptions, opts *checkOptions, docDir, codeDir string, maxIterations int, outDir string, arbitrate bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	logger := commandLogger(rootOpts, formatter.GetErrWriter())

	if opts.Evidence == "" {
		return NewExitError(ExitCommandError, "repair requires --evidence")
	}

	app, loadErrs := irload.Load(irload.FileSystemRef{Dir: docDir}, irload.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		return outputLoadErrors(formatter, loadErrs)
	}
	snapshot, err := irload.LoadSnapshot(codeDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading generated code", err)
	}
	evidence, err := irload.LoadEvidence(opts.Evidence)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading evidence", err)
	}
	mode, thresholds, err := gateSettings(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "gate configuration", err)
	}

	ctx := cmd.Context()
	cfg := repair.LoopConfig{
		Phase:         opts.Phase,
		MaxIterations: maxIterations,
		Mode:          mode,
		Thresholds:    thresholds,
		Logger:        logger,
	}

	if arbitrate {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return NewExitError(ExitCommandError, "--arbitrate requires ANTHROPIC_API_KEY")
		}
		pool, err := match.NewPool(match.NewAnthropicArbiter(apiKey, match.DefaultArbiterModel), 0)
		if err != nil {
			return WrapExitError(ExitCommandError, "creating arbiter", err)
		}
		cfg.Arbiter = pool
	}

	if rootOpts.Ledger != "" {
		store, err := ledger.Open(rootOpts.Ledger)
		if err != nil {
			return WrapExitError(ExitCommandError, "opening ledger", err)
		}
		defer store.Close()

		irHash, err := app.Hash()
		if err != nil {
			return WrapExitError(ExitCommandError, "hashing document", err)
		}
		runID, err := store.BeginRun(ctx, opts.Phase, irHash, string(mode))
		if err != nil {
			return WrapExitError(ExitCommandError, "starting ledger run", err)
		}
		formatter.VerboseLog("Ledger run %d in %s", runID, rootOpts.Ledger)
		cfg.Recorder = ledger.NewRecorder(ctx, store, runID)
	}

	result, loopErr := repair.Loop(ctx, app, snapshot, evidence, cfg)
	if result != nil && result.Best != nil {
		if err := outputRepairResult(formatter, result); err != nil {
			return err
		}
	}
	if loopErr != nil {
		if gate.IsRegression(loopErr) || gate.IsStructuralDefect(loopErr) {
			return WrapExitError(ExitFailure, "repair loop aborted", loopErr)
		}
		return WrapExitError(ExitCommandError, "repair loop", loopErr)
	}

	if outDir != "" && result.Final != nil {
		if err := irload.WriteSnapshot(result.Final, outDir); err != nil {
			return WrapExitError(ExitCommandError, "writing repaired code", err)
		}
		formatter.VerboseLog("Repaired code written to %s", outDir)
	}

	if !result.Converged && result.Best.Status == gate.StatusFailed {
		return NewExitError(ExitFailure, "gate still failing after repair")
	}
	return nil
}

func outputRepairResult(f *OutputFormatter, result *repair.LoopResult) error {
	if f.Format == "json" {
		return f.Success(map[string]interface{}{
			"report":         result.Best,
			"best_iteration": result.BestIteration,
			"iterations":     result.Iterations,
			"converged":      result.Converged,
			"snapshot":       result.Final.Hash(),
			"manual":         result.ManualItems,
			"seed_defects":   result.SeedDefects,
		})
	}

	if err := outputReport(f, result.Best, nil); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "Iterations: %d (best: %d, converged: %t)\n",
		result.Iterations, result.BestIteration, result.Converged)
	fmt.Fprintf(f.Writer, "Final snapshot: %s\n", result.Final.Hash())
	for _, item := range result.ManualItems {
		fmt.Fprintf(f.Writer, "  manual       %s\n", item)
	}
	for _, item := range result.SeedDefects {
		fmt.Fprintf(f.Writer, "  seed defect  %s\n", item)
	}
	return nil
}
