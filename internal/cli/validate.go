package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tesler-ui/datasync/internal/schema"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Screens []string `json:"screens,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <metadata-dir>",
		Short: "Validate screen metadata documents",
		Long: `Validate screen metadata documents (YAML or JSON) against the
structural schema and the cross-reference rules.

Checks field presence and types, widget -> BC references, BC parent
chains, hierarchy level declarations, and view/widget name uniqueness.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	screens, loadErrs := schema.LoadScreens(dir)

	// A nil screen list with errors means the directory itself was bad.
	if screens == nil && len(loadErrs) > 0 {
		var docErr *schema.DocumentError
		if !errors.As(loadErrs[0], &docErr) {
			_ = formatter.Error("E005", loadErrs[0].Error(), nil)
			return NewExitError(ExitCommandError, loadErrs[0].Error())
		}
	}

	names := make([]string, 0, len(screens))
	for _, s := range screens {
		formatter.VerboseLog("Validated screen: %s", s.Name)
		names = append(names, s.Name)
	}

	if len(loadErrs) > 0 {
		msgs := make([]string, len(loadErrs))
		for i, err := range loadErrs {
			msgs[i] = err.Error()
		}
		if formatter.Format == "json" {
			_ = formatter.Error("E200", "validation failed", ValidationResult{
				Valid:   false,
				Screens: names,
				Errors:  msgs,
			})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
			for _, msg := range msgs {
				fmt.Fprintf(formatter.Writer, "  %s\n", msg)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(loadErrs)))
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Screens: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d screen(s) valid\n", len(names))
	return nil
}
