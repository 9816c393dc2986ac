package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes structural errors found while resolving source.
type ErrorKind string

const (
	// KindUnmatchedClosingBracket indicates a ']' with no open '['.
	KindUnmatchedClosingBracket ErrorKind = "unmatched_closing_bracket"

	// KindUnmatchedOpeningBracket indicates a '[' still open at end of source.
	KindUnmatchedOpeningBracket ErrorKind = "unmatched_opening_bracket"
)

// Message returns a human-readable description of the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindUnmatchedClosingBracket:
		return "unmatched closing bracket ']'"
	case KindUnmatchedOpeningBracket:
		return "unmatched opening bracket '['"
	default:
		return string(k)
	}
}

// LexError is a structural error in program source.
// Line and Column are 1-based; Column counts runes.
type LexError struct {
	Kind   ErrorKind
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at line %d:%d", e.Kind.Message(), e.Line, e.Column)
}

// IsLexError returns true if err is or wraps a *LexError.
func IsLexError(err error) bool {
	var le *LexError
	return errors.As(err, &le)
}

// LexErrorKind returns the kind of a wrapped *LexError, or "" if err is not one.
func LexErrorKind(err error) ErrorKind {
	var le *LexError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
