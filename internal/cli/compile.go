package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	ProgramFlags
}

// CompilationResult is the JSON form of a compiled program.
type CompilationResult struct {
	Path            string   `json:"path"`
	Hash            string   `json:"hash"`
	Optimized       bool     `json:"optimized"`
	RawInstructions int      `json:"raw_instructions"`
	Instructions    int      `json:"instructions"`
	Listing         []string `json:"listing"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file.bf>",
		Short: "Compile a program and print its instructions",
		Long: `Compile a Brainfuck program and print the instruction listing.

Text output is a numbered disassembly with loop bodies indented. JSON output
carries the program hash, instruction counts and the listing. Use
--no-optimize to see the resolved program before peephole optimization.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoOptimize, "no-optimize", false, "skip the peephole optimizer")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(cmd, opts.RootOptions, &opts.ProgramFlags)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	res, err := LoadProgram(path, cfg.Optimize)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	formatter.VerboseLog("Compiled %s: %d raw instruction(s), %d after optimization",
		path, res.RawInstructions, res.Program.Len())

	return outputCompileSuccess(formatter, path, res)
}

// NewCompilationResult describes a compiled program for JSON output.
func NewCompilationResult(path string, res *compiler.Result) (CompilationResult, error) {
	hash, err := ir.ProgramHash(res.Program)
	if err != nil {
		return CompilationResult{}, err
	}
	return CompilationResult{
		Path:            path,
		Hash:            hash,
		Optimized:       res.Optimized,
		RawInstructions: res.RawInstructions,
		Instructions:    res.Program.Len(),
		Listing:         res.Program.Listing(),
	}, nil
}

// outputCompileSuccess outputs the compiled program.
func outputCompileSuccess(formatter *OutputFormatter, path string, res *compiler.Result) error {
	if formatter.Format == "json" {
		result, err := NewCompilationResult(path, res)
		if err != nil {
			return WrapExitError(ExitCommandError, "hashing program", err)
		}
		return formatter.Success(result)
	}

	mode := "optimized"
	if !res.Optimized {
		mode = "unoptimized"
	}
	fmt.Fprintf(formatter.Writer, "%s Compiled %s: %d instruction(s) (%s, %d raw)\n\n",
		markPass, path, res.Program.Len(), mode, res.RawInstructions)
	fmt.Fprint(formatter.Writer, res.Program.Disassemble())

	return nil
}
