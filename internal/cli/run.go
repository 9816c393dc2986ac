package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/config"
	"github.com/roach88/bfjit/internal/engine"
	"github.com/roach88/bfjit/internal/ir"
	"github.com/roach88/bfjit/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ProgramFlags
	Database string
	Stats    bool

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, the store default (UUIDv7) is used.
	IDGenerator store.IDGenerator
}

// RunSummary is printed by --stats after a run.
type RunSummary struct {
	RunID           string `json:"run_id,omitempty"`
	Path            string `json:"path"`
	Instructions    int    `json:"instructions"`
	RawInstructions int    `json:"raw_instructions"`
	Steps           int64  `json:"steps"`
	BytesRead       int64  `json:"bytes_read"`
	BytesWritten    int64  `json:"bytes_written"`
}

func (s RunSummary) String() string {
	out := fmt.Sprintf("steps=%d in=%d out=%d instructions=%d raw_instructions=%d",
		s.Steps, s.BytesRead, s.BytesWritten, s.Instructions, s.RawInstructions)
	if s.RunID != "" {
		out += " run_id=" + s.RunID
	}
	return out
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file.bf>",
		Short: "Compile and run a program",
		Long: `Compile a Brainfuck program and run it on stdin/stdout.

Program output goes to stdout; diagnostics, --stats and errors go to
stderr. With --db the run is recorded in the SQLite run history.

Exit codes:
  0 - Program finished
  1 - Runtime error (pointer out of bounds, I/O failure, step limit)
  2 - Command error (missing file, bracket error, empty program, bad config)

Example:
  bfjit run hello.bf
  echo abc | bfjit run --max-steps 100000 echo.bf
  bfjit run --db ./runs.db --stats hello.bf`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	addProgramFlags(cmd, &opts.ProgramFlags)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print a run summary to stderr")

	return cmd
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	// stdout belongs to the program; everything else goes to stderr.
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}

	cfg, err := resolveConfig(cmd, opts.RootOptions, &opts.ProgramFlags)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	res, err := LoadProgram(path, cfg.Optimize)
	if err != nil {
		return reportLoadError(formatter, err)
	}
	logger.Debug("program built",
		"path", path,
		"instructions", res.Program.Len(),
		"raw_instructions", res.RawInstructions)

	engineOpts := append(cfg.EngineOptions(),
		engine.WithInput(cmd.InOrStdin()),
		engine.WithOutput(cmd.OutOrStdout()),
		engine.WithLogger(logger),
	)
	eng, err := engine.New(res.Program, engineOpts...)
	if err != nil {
		return reportLoadError(formatter, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err})
	}

	runErr := eng.Run()
	stats := eng.Stats()

	summary := RunSummary{
		Path:            path,
		Instructions:    res.Program.Len(),
		RawInstructions: res.RawInstructions,
		Steps:           stats.Steps,
		BytesRead:       stats.BytesRead,
		BytesWritten:    stats.BytesWritten,
	}

	if cfg.Database != "" {
		run, err := recordRun(cmdContext(cmd), opts, cfg, path, res, stats, runErr)
		if err != nil {
			if outErr := formatter.Error(ErrCodeStore, err.Error(), map[string]any{"db": cfg.Database}); outErr != nil {
				return outErr
			}
			return reportedExitError(ExitCommandError, "failed to record run", err)
		}
		summary.RunID = run.ID
		logger.Info("run recorded", "run_id", run.ID, "seq", run.Seq)
	}

	if opts.Stats {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	}

	if runErr != nil {
		code := ErrorCodeFor(runErr)
		if outErr := formatter.Error(code, runErr.Error(), map[string]any{"steps": stats.Steps}); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitFailure, code, runErr)
	}
	return nil
}

// recordRun writes one row of run history.
func recordRun(ctx context.Context, opts *RunOptions, cfg config.Config, path string,
	res *compiler.Result, stats engine.Stats, runErr error) (store.Run, error) {
	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}

	st, err := store.Open(cfg.Database, storeOpts...)
	if err != nil {
		return store.Run{}, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	hash, err := ir.ProgramHash(res.Program)
	if err != nil {
		return store.Run{}, err
	}

	run := store.Run{
		SourcePath:      path,
		ProgramHash:     hash,
		RawInstructions: res.RawInstructions,
		Instructions:    res.Program.Len(),
		Steps:           stats.Steps,
		BytesIn:         stats.BytesRead,
		BytesOut:        stats.BytesWritten,
		Status:          store.StatusOK,
		EngineVersion:   ir.EngineVersion,
	}
	if runErr != nil {
		run.Status = store.StatusError
		run.ErrorCode = ErrorCodeFor(runErr)
		run.ErrorMessage = runErr.Error()
	}

	return st.WriteRun(ctx, run)
}

// cmdContext returns the command's context, or Background outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
