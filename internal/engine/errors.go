package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/bfjit/internal/ir"
)

// RuntimeError represents an error detected while a program executes.
//
// Runtime errors include:
//   - Pointer out of bounds: a pointer move would leave the memory buffer
//   - I/O failure: the input or output channel reported an error
//   - Step limit exceeded: the opt-in step limit was reached
//
// Execution halts at the first runtime error; the fields describe the
// machine state at the faulting instruction.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// PC is the index of the faulting instruction.
	PC int

	// Instruction is the faulting instruction.
	Instruction ir.Instruction

	// Pointer is the data pointer before the faulting instruction.
	Pointer uint

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodePointerOutOfBounds indicates a pointer move below zero or past
	// the end of memory.
	ErrCodePointerOutOfBounds RuntimeErrorCode = "POINTER_OUT_OF_BOUNDS"

	// ErrCodeIOFailure indicates the input or output channel failed.
	ErrCodeIOFailure RuntimeErrorCode = "IO_FAILURE"

	// ErrCodeStepLimitExceeded indicates the run hit its step limit.
	ErrCodeStepLimitExceeded RuntimeErrorCode = "STEP_LIMIT_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (pc=%d, %s): %v", e.Code, e.Message, e.PC, e.Instruction, e.Err)
	}
	return fmt.Sprintf("%s: %s (pc=%d, %s)", e.Code, e.Message, e.PC, e.Instruction)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsPointerError returns true if the error is a pointer bounds error.
// Uses errors.As to handle wrapped errors.
func IsPointerError(err error) bool {
	return hasCode(err, ErrCodePointerOutOfBounds)
}

// IsIOError returns true if the error is an input/output failure.
func IsIOError(err error) bool {
	return hasCode(err, ErrCodeIOFailure)
}

// IsStepLimitError returns true if the error is a step limit error.
// Matches both RuntimeError with ErrCodeStepLimitExceeded and StepsExceededError.
func IsStepLimitError(err error) bool {
	if hasCode(err, ErrCodeStepLimitExceeded) {
		return true
	}
	var se *StepsExceededError
	return errors.As(err, &se)
}

// ErrorCode returns the RuntimeErrorCode of err, or "" if err is not a
// RuntimeError.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func newPointerError(pc int, in ir.Instruction, pointer uint, memSize int) *RuntimeError {
	return &RuntimeError{
		Code:        ErrCodePointerOutOfBounds,
		Message:     fmt.Sprintf("pointer %d moved by %d leaves memory [0, %d)", pointer, in.Count, memSize),
		PC:          pc,
		Instruction: in,
		Pointer:     pointer,
	}
}

func newIOError(pc int, in ir.Instruction, pointer uint, cause error) *RuntimeError {
	msg := "write failed"
	if in.Op == ir.OpInput {
		msg = "read failed"
	}
	return &RuntimeError{
		Code:        ErrCodeIOFailure,
		Message:     msg,
		PC:          pc,
		Instruction: in,
		Pointer:     pointer,
		Err:         cause,
	}
}

func newStepLimitError(pc int, in ir.Instruction, pointer uint, cause *StepsExceededError) *RuntimeError {
	return &RuntimeError{
		Code:        ErrCodeStepLimitExceeded,
		Message:     fmt.Sprintf("run exceeded %d steps", cause.Limit),
		PC:          pc,
		Instruction: in,
		Pointer:     pointer,
		Err:         cause,
	}
}
