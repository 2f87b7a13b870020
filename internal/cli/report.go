package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verdict-engine/verdict/internal/ledger"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Show the recorded history of a repair run",
		Long: `Read a run's iteration reports and repair outcomes back from the
ledger. The ledger path comes from the global --ledger flag.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runReport(rootOpts *RootOptions, runIDArg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	if rootOpts.Ledger == "" {
		return NewExitError(ExitCommandError, "report requires --ledger")
	}
	runID, err := strconv.ParseInt(runIDArg, 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid run id", err)
	}

	store, err := ledger.Open(rootOpts.Ledger)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening ledger", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	reports, err := store.ListReports(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading reports", err)
	}
	if len(reports) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no reports recorded for run %d", runID))
	}
	outcomes, err := store.OutcomeCounts(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading outcomes", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]interface{}{
			"run_id":   runID,
			"reports":  reports,
			"outcomes": outcomes,
		})
	}

	fmt.Fprintf(formatter.Writer, "Run %d: %d iteration(s)\n", runID, len(reports))
	for _, r := range reports {
		fmt.Fprintf(formatter.Writer, "  #%d %-20s %s coverage=%.2f%% violations=%d warnings=%d manual=%d\n",
			r.Iteration, r.Phase, r.Status, float64(r.CoverageBP)/100, r.Violations, r.Warnings, r.Manual)
	}
	for _, outcome := range []string{"APPLIED", "ALREADY_APPLIED", "ALREADY_SATISFIED", "MANUAL", "SEED_DEFECT"} {
		if n := outcomes[outcome]; n > 0 {
			fmt.Fprintf(formatter.Writer, "  %-18s %d\n", outcome, n)
		}
	}
	return nil
}
