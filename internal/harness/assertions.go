package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Expectation being checked: output, error, instructions, cross_check
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpectations checks a result against the scenario's expectations.
// Returns a slice of error messages for failed expectations.
func EvaluateExpectations(result *Result, expect Expectation) []string {
	var errors []string

	for _, err := range []error{
		assertError(result, expect),
		assertOutput(result, expect),
		assertInstructions(result, expect),
	} {
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertError(result *Result, expect Expectation) error {
	if result.ErrorKind == expect.Error {
		return nil
	}
	return &AssertionError{
		Type:     "error",
		Expected: describeKind(expect.Error),
		Actual:   describeKind(result.ErrorKind),
	}
}

func assertOutput(result *Result, expect Expectation) error {
	if expect.Output == nil || result.Output == *expect.Output {
		return nil
	}
	return &AssertionError{
		Type:     "output",
		Expected: fmt.Sprintf("%q", *expect.Output),
		Actual:   fmt.Sprintf("%q", result.Output),
	}
}

func assertInstructions(result *Result, expect Expectation) error {
	if expect.Instructions == 0 || len(result.Listing) == expect.Instructions {
		return nil
	}
	return &AssertionError{
		Type:     "instructions",
		Expected: fmt.Sprintf("%d instructions", expect.Instructions),
		Actual:   fmt.Sprintf("%d instructions", len(result.Listing)),
	}
}

func describeKind(kind string) string {
	if kind == "" {
		return "success"
	}
	return kind
}
