package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                       `json:"valid"`
	Path         string                     `json:"path"`
	Instructions int                        `json:"instructions"`
	Loops        int                        `json:"loops"`
	Errors       []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file.bf>",
		Short: "Check a program's bracket structure",
		Long: `Check that every '[' has a matching ']' without running the program.

Bracket errors are reported as file:line:col with an error code:
  E201 - unmatched closing bracket
  E202 - unmatched opening bracket
  E203 - no instructions in source

Exit codes:
  0 - Source is valid
  1 - Source has structural errors
  2 - Command error (missing or unreadable file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	source, err := LoadSource(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	code, err := compiler.Resolve(source)
	if err == nil && len(code) == 0 {
		err = ir.ErrEmptyProgram
	}
	if err != nil {
		return outputValidateError(formatter, convertBuildError(path, err))
	}
	result := ValidationResult{
		Valid:        true,
		Path:         path,
		Instructions: len(code),
		Loops:        countLoops(code),
	}
	formatter.VerboseLog("Resolved %d instruction(s) in %s", result.Instructions, path)

	// Resolve guarantees pairing; this checks the optimizer keeps it.
	// Optimize rewrites code in place.
	if errs := compiler.ValidateLoops(compiler.Optimize(code)); len(errs) > 0 {
		return outputValidationErrors(formatter, path, errs)
	}

	return outputValidateSuccess(formatter, result)
}

func countLoops(code []ir.Instruction) int {
	n := 0
	for _, in := range code {
		if in.Op == ir.OpLoopStart {
			n++
		}
	}
	return n
}

// outputValidateSuccess outputs successful validation result.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s: %d instruction(s), %d loop(s)\n",
		markPass, result.Path, result.Instructions, result.Loops)
	return nil
}

// outputValidateError outputs a source error at its position.
func outputValidateError(formatter *OutputFormatter, le *LoadError) error {
	if formatter.Format == "json" {
		if err := formatter.Error(le.Code, le.Message, le.details()); err != nil {
			return err
		}
	} else {
		pos := le.Path
		if le.Line > 0 {
			pos = fmt.Sprintf("%s:%d:%d", le.Path, le.Line, le.Column)
		}
		fmt.Fprintf(formatter.Writer, "%s %s\n", markFail, pos)
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", le.Code, le.Message)
	}
	return reportedExitError(ExitFailure, "validation failed", le)
}

// outputValidationErrors outputs broken loop pairs found after optimization.
func outputValidationErrors(formatter *OutputFormatter, path string, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		if err := formatter.Error(errs[0].Code,
			fmt.Sprintf("validation failed with %d error(s)", len(errs)),
			ValidationResult{Valid: false, Path: path, Errors: errs}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s %s: validation failed with %d error(s)\n", markFail, path, len(errs))
		for _, e := range errs {
			fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
		}
	}
	return reportedExitError(ExitFailure,
		fmt.Sprintf("validation failed with %d error(s)", len(errs)), errors.Join(validationErrs(errs)...))
}

func validationErrs(errs []compiler.ValidationError) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
