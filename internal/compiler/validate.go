package compiler

import (
	"fmt"

	"github.com/roach88/bfjit/internal/ir"
)

// Validation error codes (E210-E219)
const (
	ErrLoopTargetOutOfRange = "E210" // jump target outside the program
	ErrLoopTargetMismatch   = "E211" // target is not the matching bracket
	ErrLoopNesting          = "E212" // brackets do not nest
)

// ValidationError describes a broken loop pair in an instruction sequence.
type ValidationError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] instruction %d: %s", e.Code, e.Index, e.Message)
}

// ValidateLoops checks the loop invariant: every LoopStart at i targets a
// LoopEnd at j whose target is i, the pairs nest properly, and vice versa.
// Returns all errors found (does not fail-fast).
func ValidateLoops(code []ir.Instruction) []ValidationError {
	var errs []ValidationError
	var open []int

	for i, in := range code {
		if !in.Op.IsJump() {
			continue
		}

		if in.Target < 0 || in.Target >= len(code) {
			errs = append(errs, ValidationError{
				Index:   i,
				Message: fmt.Sprintf("%s target %d is outside [0, %d)", in.Op, in.Target, len(code)),
				Code:    ErrLoopTargetOutOfRange,
			})
		} else {
			want := ir.OpLoopEnd
			if in.Op == ir.OpLoopEnd {
				want = ir.OpLoopStart
			}
			peer := code[in.Target]
			if peer.Op != want || peer.Target != i {
				errs = append(errs, ValidationError{
					Index:   i,
					Message: fmt.Sprintf("%s targets %d, which is %s, not %s(%d)", in.Op, in.Target, peer, want, i),
					Code:    ErrLoopTargetMismatch,
				})
			}
		}

		if in.Op == ir.OpLoopStart {
			open = append(open, i)
			continue
		}
		if len(open) == 0 {
			errs = append(errs, ValidationError{
				Index:   i,
				Message: "LoopEnd without an open LoopStart",
				Code:    ErrLoopNesting,
			})
			continue
		}
		start := open[len(open)-1]
		open = open[:len(open)-1]
		if in.Target != start {
			errs = append(errs, ValidationError{
				Index:   i,
				Message: fmt.Sprintf("LoopEnd closes LoopStart at %d but targets %d", start, in.Target),
				Code:    ErrLoopNesting,
			})
		}
	}

	for _, i := range open {
		errs = append(errs, ValidationError{
			Index:   i,
			Message: "LoopStart is never closed",
			Code:    ErrLoopNesting,
		})
	}

	return errs
}
