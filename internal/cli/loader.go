package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/config"
	"github.com/roach88/bfjit/internal/ir"
)

// LoadError is a failure to turn a source path into a runnable program.
// Path, Line and Column are set for source errors.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Line    int
	Column  int
	Err     error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Path, e.Line, e.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// details returns the position fields for JSON error output.
func (e *LoadError) details() map[string]any {
	if e.Path == "" {
		return nil
	}
	d := map[string]any{"file": e.Path}
	if e.Line > 0 {
		d["line"] = e.Line
		d["column"] = e.Column
	}
	return d
}

// LoadSource reads program source from path.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("source file not found: %s", path),
			Path:    path,
			Err:     err,
		}
	}
	if err != nil {
		return "", &LoadError{
			Code:    ErrCodeReadFailed,
			Message: fmt.Sprintf("reading %s: %v", path, err),
			Path:    path,
			Err:     err,
		}
	}
	return string(data), nil
}

// BuildSource compiles source read from path. Lex errors and empty
// programs come back as *LoadError carrying the source position.
func BuildSource(path, source string, optimize bool) (*compiler.Result, error) {
	res, err := compiler.Compile(source, compiler.Options{Optimize: optimize})
	if err == nil {
		return res, nil
	}
	return nil, convertBuildError(path, err)
}

// LoadProgram reads and compiles the program at path.
func LoadProgram(path string, optimize bool) (*compiler.Result, error) {
	source, err := LoadSource(path)
	if err != nil {
		return nil, err
	}
	return BuildSource(path, source, optimize)
}

func convertBuildError(path string, err error) *LoadError {
	var lexErr *compiler.LexError
	if errors.As(err, &lexErr) {
		return &LoadError{
			Code:    ErrorCodeFor(err),
			Message: lexErr.Kind.Message(),
			Path:    path,
			Line:    lexErr.Line,
			Column:  lexErr.Column,
			Err:     err,
		}
	}
	if errors.Is(err, ir.ErrEmptyProgram) {
		return &LoadError{
			Code:    ErrCodeEmptyProgram,
			Message: "source contains no instructions",
			Path:    path,
			Err:     err,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("compiling %s: %v", path, err),
		Path:    path,
		Err:     err,
	}
}

// ProgramFlags holds the engine settings a command can override on the
// command line.
type ProgramFlags struct {
	MemorySize int
	MaxSteps   int64
	NoOptimize bool
}

func addProgramFlags(cmd *cobra.Command, f *ProgramFlags) {
	cmd.Flags().IntVar(&f.MemorySize, "memory-size", 0, "number of memory cells (default from config, 4 MiB)")
	cmd.Flags().Int64Var(&f.MaxSteps, "max-steps", 0, "stop after this many instructions (0 = unlimited)")
	cmd.Flags().BoolVar(&f.NoOptimize, "no-optimize", false, "skip the peephole optimizer")
}

// resolveConfig builds the effective settings: defaults, then the --config
// file, then any flags set explicitly on cmd.
func resolveConfig(cmd *cobra.Command, opts *RootOptions, f *ProgramFlags) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, &LoadError{
				Code:    ErrCodeConfig,
				Message: err.Error(),
				Path:    opts.ConfigPath,
				Err:     err,
			}
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("memory-size") {
		cfg.MemorySize = f.MemorySize
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = f.MaxSteps
	}
	if flags.Changed("no-optimize") {
		cfg.Optimize = !f.NoOptimize
	}
	if db := flags.Lookup("db"); db != nil && db.Changed {
		cfg.Database = db.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// reportLoadError prints err through the formatter and returns the
// matching exit error. Load errors are command errors (exit 2).
func reportLoadError(formatter *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return reportedExitError(ExitCommandError, ErrCodeGeneric, err)
	}

	msg := le.Message
	if le.Line > 0 {
		msg = fmt.Sprintf("%s:%d:%d: %s", le.Path, le.Line, le.Column, le.Message)
	}
	if outErr := formatter.Error(le.Code, msg, le.details()); outErr != nil {
		return outErr
	}
	return reportedExitError(ExitCommandError, le.Code, err)
}
