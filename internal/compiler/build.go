package compiler

import "github.com/roach88/bfjit/internal/ir"

// Options controls the build pipeline.
type Options struct {
	// Optimize enables the peephole optimizer.
	Optimize bool
}

// DefaultOptions returns the options Build uses.
func DefaultOptions() Options {
	return Options{Optimize: true}
}

// Result is the outcome of a successful Compile.
type Result struct {
	Program *ir.Program

	// RawInstructions is the instruction count before optimization.
	RawInstructions int

	// Optimized reports whether the peephole optimizer ran.
	Optimized bool
}

// Build resolves and optimizes source into an executable Program.
//
// Returns a *LexError for bracket errors, or ir.ErrEmptyProgram if the
// source contains no instructions.
func Build(source string) (*ir.Program, error) {
	res, err := Compile(source, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

// Compile runs the build pipeline with explicit options and reports
// instruction counts alongside the Program.
func Compile(source string, opts Options) (*Result, error) {
	code, err := Resolve(source)
	if err != nil {
		return nil, err
	}
	raw := len(code)

	if opts.Optimize {
		code = Optimize(code)
	}

	prog, err := ir.NewProgram(code)
	if err != nil {
		return nil, err
	}

	return &Result{
		Program:         prog,
		RawInstructions: raw,
		Optimized:       opts.Optimize,
	}, nil
}
