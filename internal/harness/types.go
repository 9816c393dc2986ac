package harness

import (
	"errors"

	"github.com/roach88/bfjit/internal/compiler"
	"github.com/roach88/bfjit/internal/engine"
	"github.com/roach88/bfjit/internal/ir"
)

// Error kinds as written in a scenario's expect.error field.
const (
	ErrorUnmatchedClosingBracket = "unmatched_closing_bracket"
	ErrorUnmatchedOpeningBracket = "unmatched_opening_bracket"
	ErrorEmptyProgram            = "empty_program"
	ErrorPointerOutOfBounds      = "pointer_out_of_bounds"
	ErrorIOFailure               = "io_failure"
	ErrorStepLimit               = "step_limit"
)

var knownErrorKinds = map[string]bool{
	ErrorUnmatchedClosingBracket: true,
	ErrorUnmatchedOpeningBracket: true,
	ErrorEmptyProgram:            true,
	ErrorPointerOutOfBounds:      true,
	ErrorIOFailure:               true,
	ErrorStepLimit:               true,
}

// ClassifyError maps a build or run error to its scenario error kind.
// Returns "" for nil and for errors that are not program failures.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ir.ErrEmptyProgram):
		return ErrorEmptyProgram
	case compiler.LexErrorKind(err) == compiler.KindUnmatchedClosingBracket:
		return ErrorUnmatchedClosingBracket
	case compiler.LexErrorKind(err) == compiler.KindUnmatchedOpeningBracket:
		return ErrorUnmatchedOpeningBracket
	case engine.IsPointerError(err):
		return ErrorPointerOutOfBounds
	case engine.IsIOError(err):
		return ErrorIOFailure
	case engine.IsStepLimitError(err):
		return ErrorStepLimit
	}
	return ""
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Output is everything the program wrote, including output flushed
	// before a runtime error.
	Output string `json:"output"`

	// Listing is the compiled program, one instruction per line.
	// Empty when the build failed.
	Listing []string `json:"listing"`

	// Steps is the number of instructions executed.
	Steps int64 `json:"steps"`

	// ErrorKind is the build or run error, or "" on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// Errors contains expectation failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Listing: []string{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
