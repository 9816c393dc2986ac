package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/engine"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	ProgramFlags
	Limit int64 // max steps printed; 0 prints all
}

// TraceLine is one executed instruction in JSON trace output.
type TraceLine struct {
	Step        int64  `json:"step"`
	PC          int    `json:"pc"`
	Instruction string `json:"instruction"`
	Pointer     uint   `json:"pointer"`
	Cell        byte   `json:"cell"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <file.bf>",
		Short: "Run a program and print every executed instruction",
		Long: `Run a program like 'run' and write one line per executed instruction
to stderr: the step number, program counter, instruction, data pointer and
the current cell value before the instruction runs.

With --format json each step is a JSON object on its own line.
Program output still goes to stdout.

Examples:
  bfjit trace hello.bf
  bfjit trace --limit 50 hello.bf
  bfjit trace --format json --max-steps 1000 loop.bf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	addProgramFlags(cmd, &opts.ProgramFlags)
	cmd.Flags().Int64Var(&opts.Limit, "limit", 0, "print at most this many steps (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}

	if opts.Limit < 0 {
		return reportLoadError(formatter, &LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("--limit must not be negative, got %d", opts.Limit),
		})
	}

	cfg, err := resolveConfig(cmd, opts.RootOptions, &opts.ProgramFlags)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	res, err := LoadProgram(path, cfg.Optimize)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	w := bufio.NewWriter(cmd.ErrOrStderr())
	printer := newStepPrinter(w, opts.Format, opts.Limit)

	engineOpts := append(cfg.EngineOptions(),
		engine.WithInput(cmd.InOrStdin()),
		engine.WithOutput(cmd.OutOrStdout()),
		engine.WithLogger(logger),
		engine.WithTracer(printer.print),
	)
	eng, err := engine.New(res.Program, engineOpts...)
	if err != nil {
		return reportLoadError(formatter, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err})
	}

	runErr := eng.Run()
	printer.finish(eng.Stats().Steps)
	if err := w.Flush(); err != nil {
		return WrapExitError(ExitFailure, "writing trace", err)
	}

	if runErr != nil {
		code := ErrorCodeFor(runErr)
		if outErr := formatter.Error(code, runErr.Error(), map[string]any{"steps": eng.Stats().Steps}); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitFailure, code, runErr)
	}
	return nil
}

// stepPrinter renders engine steps as text or JSON lines.
type stepPrinter struct {
	w       io.Writer
	enc     *json.Encoder
	limit   int64
	printed int64
}

func newStepPrinter(w io.Writer, format string, limit int64) *stepPrinter {
	p := &stepPrinter{w: w, limit: limit}
	if format == "json" {
		p.enc = json.NewEncoder(w)
	}
	return p
}

func (p *stepPrinter) print(s engine.Step) {
	if p.limit > 0 && p.printed >= p.limit {
		return
	}
	p.printed++

	if p.enc != nil {
		_ = p.enc.Encode(TraceLine{
			Step:        s.Index,
			PC:          s.PC,
			Instruction: s.Instruction.String(),
			Pointer:     s.Pointer,
			Cell:        s.Cell,
		})
		return
	}
	fmt.Fprintf(p.w, "%8d  %04d  %-16s ptr=%-8d cell=%d\n",
		s.Index, s.PC, s.Instruction, s.Pointer, s.Cell)
}

// finish notes steps cut off by the limit. JSON output stays one object
// per line, so the note is text only.
func (p *stepPrinter) finish(total int64) {
	if p.enc != nil || total <= p.printed {
		return
	}
	fmt.Fprintf(p.w, "... %d more step(s) not shown\n", total-p.printed)
}
