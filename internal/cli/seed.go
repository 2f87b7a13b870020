package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdict-engine/verdict/internal/irload"
	"github.com/verdict-engine/verdict/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "seed <document-dir>",
		Short: "Derive a deterministic seed plan from an application document",
		Long: `Derive the minimal data population that satisfies every declared
constraint and flow precondition. The same document always yields a
byte-identical plan, so plans can be diffed and content addressed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the plan to a file instead of stdout")

	return cmd
}

func runSeed(opts *RootOptions, docDir, outPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, loadErrs := irload.Load(irload.FileSystemRef{Dir: docDir}, irload.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		return outputLoadErrors(formatter, loadErrs)
	}

	formatter.VerboseLog("Loaded application %q (%d entities, %d constraints)",
		app.Name, len(app.Domain.Entities), len(app.Validation.Constraints))

	plan, err := seed.Derive(app)
	if err != nil {
		if seed.IsCyclicDependency(err) {
			formatter.Error("S100", err.Error(), nil)
			return NewExitError(ExitFailure, "seed derivation failed")
		}
		return WrapExitError(ExitCommandError, "deriving seed plan", err)
	}

	data, err := plan.MarshalCanonical()
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding seed plan", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "writing seed plan", err)
		}
		return formatter.SuccessText(
			map[string]interface{}{"path": outPath, "requirements": len(plan.Requirements)},
			fmt.Sprintf("Seed plan with %d requirement(s) written to %s", len(plan.Requirements), outPath))
	}

	// The plan is already canonical JSON; emit it verbatim in both
	// formats so it can be piped into content addressing.
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// outputLoadErrors renders loader failures and picks the exit code:
// document defects are compliance failures, everything else is a
// command error.
func outputLoadErrors(formatter *OutputFormatter, loadErrs []error) error {
	code := ExitCommandError
	for _, err := range loadErrs {
		var le *irload.LoadError
		if errors.As(err, &le) {
			formatter.Error(le.Code, le.Message, le.Field)
			if le.Field != "" || le.Code == irload.ErrCodeNoApplication {
				code = ExitFailure
			}
			continue
		}
		formatter.Error(irload.ErrCodeGeneric, err.Error(), nil)
	}
	return NewExitError(code, fmt.Sprintf("document load failed with %d error(s)", len(loadErrs)))
}
