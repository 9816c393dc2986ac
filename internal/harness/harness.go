package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/engine"
)

// execution is one build-and-run of a scenario's program.
type execution struct {
	output    string
	listing   []string
	steps     int64
	errorKind string
}

// Run executes a test scenario and returns the result.
//
// Build and runtime failures of the program are outcomes, not errors: they
// land in Result.ErrorKind and are checked against expect.error. Run
// returns an error only when the scenario itself cannot be executed, such
// as an unreadable source file.
//
// Execution flow:
// 1. Load the program source
// 2. Build it (optimized unless optimize: false) and run it on the input
// 3. With cross_check, build and run the other form and compare
// 4. Evaluate expectations
func Run(scenario *Scenario) (*Result, error) {
	source, err := scenarioSource(scenario)
	if err != nil {
		return nil, err
	}

	// Suppress engine logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	primary, err := execute(scenario, source, scenario.OptimizeEnabled(), logger)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Output = primary.output
	result.Listing = primary.listing
	result.Steps = primary.steps
	result.ErrorKind = primary.errorKind

	if scenario.CrossCheck {
		other, err := execute(scenario, source, !scenario.OptimizeEnabled(), logger)
		if err != nil {
			return nil, err
		}
		if other.output != primary.output || other.errorKind != primary.errorKind {
			result.AddError((&AssertionError{
				Type:     "cross_check",
				Expected: fmt.Sprintf("%q (%s)", primary.output, describeKind(primary.errorKind)),
				Actual:   fmt.Sprintf("%q (%s)", other.output, describeKind(other.errorKind)),
			}).Error())
		}
	}

	for _, msg := range EvaluateExpectations(result, scenario.Expect) {
		result.AddError(msg)
	}

	return result, nil
}

func scenarioSource(s *Scenario) (string, error) {
	if s.SourceFile == "" {
		return s.Source, nil
	}
	data, err := os.ReadFile(s.SourceFile)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	return string(data), nil
}

func execute(s *Scenario, source string, optimize bool, logger *slog.Logger) (*execution, error) {
	res, err := compiler.Compile(source, compiler.Options{Optimize: optimize})
	if err != nil {
		kind := ClassifyError(err)
		if kind == "" {
			return nil, fmt.Errorf("build: %w", err)
		}
		return &execution{listing: []string{}, errorKind: kind}, nil
	}

	var out bytes.Buffer
	opts := []engine.EngineOption{
		engine.WithInput(strings.NewReader(s.Input)),
		engine.WithOutput(&out),
		engine.WithMaxSteps(s.StepLimit()),
		engine.WithLogger(logger),
	}
	if s.MemorySize > 0 {
		opts = append(opts, engine.WithMemorySize(s.MemorySize))
	}

	eng, err := engine.New(res.Program, opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	runErr := eng.Run()
	kind := ClassifyError(runErr)
	if runErr != nil && kind == "" {
		return nil, fmt.Errorf("run: %w", runErr)
	}

	return &execution{
		output:    out.String(),
		listing:   res.Program.Listing(),
		steps:     eng.Stats().Steps,
		errorKind: kind,
	}, nil
}
