package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdict-engine/verdict/internal/extract"
	"github.com/verdict-engine/verdict/internal/gate"
	"github.com/verdict-engine/verdict/internal/ir"
	"github.com/verdict-engine/verdict/internal/irload"
	"github.com/verdict-engine/verdict/internal/match"
	"github.com/verdict-engine/verdict/internal/normalize"
	"github.com/verdict-engine/verdict/internal/repair"
)

// checkOptions holds flags shared by check and repair.
type checkOptions struct {
	Mode       string
	Phase      string
	Thresholds string
	Evidence   string
}

func addCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	cmd.Flags().StringVar(&opts.Mode, "mode", "STRICT", "gate mode (STRICT|LENIENT|RESEARCH)")
	cmd.Flags().StringVar(&opts.Phase, "phase", "default", "phase name recorded in reports")
	cmd.Flags().StringVar(&opts.Thresholds, "thresholds", "", "YAML file overriding gate thresholds")
	cmd.Flags().StringVar(&opts.Evidence, "evidence", "", "JSON file with runtime scenario evidence")
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <document-dir> <code-dir>",
		Short: "Check generated code against its application document",
		Long: `Extract validation rules from the generated code, match them
against the document's declared constraints, and run the tiered gate.
No code is modified; use repair for that.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	addCheckFlags(cmd, opts)

	return cmd
}

func runCheck(rootOpts *RootOptions, opts *checkOptions, docDir, codeDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
	logger := commandLogger(rootOpts, formatter.GetErrWriter())

	app, loadErrs := irload.Load(irload.FileSystemRef{Dir: docDir}, irload.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		return outputLoadErrors(formatter, loadErrs)
	}

	snapshot, err := irload.LoadSnapshot(codeDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading generated code", err)
	}
	formatter.VerboseLog("Loaded %d file(s), snapshot %s", snapshot.Len(), snapshot.Hash())

	mode, thresholds, err := gateSettings(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "gate configuration", err)
	}

	var evidence []repair.Evidence
	if opts.Evidence != "" {
		evidence, err = irload.LoadEvidence(opts.Evidence)
		if err != nil {
			return WrapExitError(ExitCommandError, "loading evidence", err)
		}
	}

	ctx := cmd.Context()
	rules, warnings, err := extract.Run(ctx, logger, snapshot, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, "extracting rules", err)
	}
	normalizer := normalize.New(nil)
	normalized, normWarnings := normalizer.Normalize(rules)
	warnings = append(warnings, normWarnings...)

	engine := match.NewEngine(normalizer.Synonyms(), match.WithLogger(logger))
	matchReport, err := engine.Match(ctx, app.Validation.Constraints, normalized)
	if err != nil {
		return WrapExitError(ExitCommandError, "matching constraints", err)
	}

	irHash, err := app.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "hashing document", err)
	}

	validator := gate.NewValidator(mode,
		gate.WithThresholds(thresholds),
		gate.WithValidatorLogger(logger))
	report, verr := validator.Run(gate.Input{
		Phase:            opts.Phase,
		IRHash:           irHash,
		Iteration:        1,
		Scenarios:        evidenceStats(evidence),
		Complexity:       checkComplexity(app),
		RequirementCount: len(app.Validation.Constraints),
		Match:            matchReport,
		Warnings:         warnings,
	})
	if report != nil {
		if err := outputReport(formatter, report, matchReport); err != nil {
			return err
		}
	}
	if verr != nil || report.Status == gate.StatusFailed {
		return NewExitError(ExitFailure, "gate failed")
	}
	return nil
}

// gateSettings resolves mode and thresholds from flags.
func gateSettings(opts *checkOptions) (gate.Mode, gate.Thresholds, error) {
	mode, err := gate.ParseMode(opts.Mode)
	if err != nil {
		return mode, gate.Thresholds{}, err
	}
	thresholds := gate.DefaultThresholds()
	if opts.Thresholds != "" {
		data, err := os.ReadFile(opts.Thresholds)
		if err != nil {
			return mode, thresholds, err
		}
		thresholds, err = gate.ParseThresholds(data)
		if err != nil {
			return mode, thresholds, err
		}
	}
	return mode, thresholds, nil
}

func evidenceStats(evidence []repair.Evidence) gate.ScenarioStats {
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

func checkComplexity(app *ir.ApplicationIR) int {
	n := len(app.Validation.Constraints)
	for _, flow := range app.Behavior.Flows {
		n += len(flow.Steps)
	}
	return n
}

// outputReport renders a gate report in the configured format.
func outputReport(f *OutputFormatter, report *gate.Report, matchReport *match.Report) error {
	if f.Format == "json" {
		return f.Success(report)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase %s, iteration %d (%s): %s\n",
		report.Phase, report.Iteration, report.Mode, report.Status)
	fmt.Fprintf(&b, "Coverage: %.2f%%", report.CoverageScore*100)
	if report.Excellence {
		b.WriteString("  [excellence]")
	}
	b.WriteString("\n")

	for _, tier := range []gate.TierName{gate.TierStructural, gate.TierSemantic, gate.TierQuality} {
		if res, ok := report.TierResults[tier]; ok {
			fmt.Fprintf(&b, "  %-10s %s\n", tier, res.Status)
		}
	}
	for _, v := range report.Violations {
		fmt.Fprintf(&b, "  violation [%s] %s\n", v.Code, v.Message)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(&b, "  warning   %s\n", w)
	}
	for _, m := range report.ManualItems {
		fmt.Fprintf(&b, "  manual    %s\n", m)
	}
	if matchReport != nil && len(matchReport.Missing) > 0 {
		missing := make([]string, 0, len(matchReport.Missing))
		for _, c := range matchReport.Missing {
			missing = append(missing, fmt.Sprintf("%s.%s %s", c.Entity, c.Field, c.Kind))
		}
		sort.Strings(missing)
		fmt.Fprintf(&b, "  missing constraints: %s\n", strings.Join(missing, ", "))
	}

	fmt.Fprint(f.Writer, b.String())
	return nil
}
