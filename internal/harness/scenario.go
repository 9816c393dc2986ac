package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultMaxSteps guards scenarios against programs that never halt.
const DefaultMaxSteps int64 = 1_000_000

// Scenario defines a program test: a source, its input and what running
// it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the program text. Exactly one of Source and SourceFile
	// must be set.
	Source string `yaml:"source,omitempty"`

	// SourceFile is a path to the program text, relative to the scenario
	// file location.
	SourceFile string `yaml:"source_file,omitempty"`

	// Input is fed to the program's Input instructions.
	Input string `yaml:"input,omitempty"`

	// Optimize runs the peephole optimizer. Default: true.
	Optimize *bool `yaml:"optimize,omitempty"`

	// MemorySize overrides the engine's memory size. Default: engine default.
	MemorySize int `yaml:"memory_size,omitempty"`

	// MaxSteps caps executed instructions. Default: DefaultMaxSteps.
	MaxSteps int64 `yaml:"max_steps,omitempty"`

	// CrossCheck also runs the program in the other optimization mode and
	// requires identical output and error kind.
	CrossCheck bool `yaml:"cross_check,omitempty"`

	// Expect lists the outcomes to validate.
	Expect Expectation `yaml:"expect"`
}

// Expectation specifies the expected outcome of a scenario.
type Expectation struct {
	// Output is the exact expected program output. Nil skips the check.
	Output *string `yaml:"output,omitempty"`

	// Error is the expected error kind. Empty means the run must succeed.
	Error string `yaml:"error,omitempty"`

	// Instructions is the expected compiled instruction count.
	// Zero skips the check.
	Instructions int `yaml:"instructions,omitempty"`
}

// OptimizeEnabled reports whether the optimizer runs for this scenario.
func (s *Scenario) OptimizeEnabled() bool {
	return s.Optimize == nil || *s.Optimize
}

// StepLimit returns the effective step limit.
func (s *Scenario) StepLimit() int64 {
	if s.MaxSteps == 0 {
		return DefaultMaxSteps
	}
	return s.MaxSteps
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// source_file is resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving source_file relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expected:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.SourceFile != "" && !filepath.IsAbs(scenario.SourceFile) && basePath != "" {
		scenario.SourceFile = filepath.Join(basePath, scenario.SourceFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Source == "" && s.SourceFile == "":
		return fmt.Errorf("one of source or source_file is required")
	case s.Source != "" && s.SourceFile != "":
		return fmt.Errorf("source and source_file are mutually exclusive")
	}

	if s.SourceFile != "" {
		if _, err := os.Stat(s.SourceFile); os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", s.SourceFile)
		}
	}

	if s.MemorySize < 0 {
		return fmt.Errorf("memory_size must be non-negative")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if s.Expect.Output == nil && s.Expect.Error == "" {
		return fmt.Errorf("expect: output or error is required")
	}
	if s.Expect.Error != "" && !knownErrorKinds[s.Expect.Error] {
		return fmt.Errorf("expect.error: unknown error kind %q", s.Expect.Error)
	}
	if s.Expect.Instructions < 0 {
		return fmt.Errorf("expect.instructions must be non-negative")
	}

	return nil
}
