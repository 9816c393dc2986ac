package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrEmptyProgram is returned when a program would contain no instructions,
// e.g. because the source was empty or consisted only of comments.
var ErrEmptyProgram = errors.New("empty program: source contains no instructions")

// Program is a resolved instruction sequence ready for execution.
// A Program is immutable once constructed.
type Program struct {
	code []Instruction
}

// NewProgram wraps an instruction sequence in a Program.
// The slice is copied; later changes to code do not affect the Program.
// Returns ErrEmptyProgram if code has no instructions.
func NewProgram(code []Instruction) (*Program, error) {
	if len(code) == 0 {
		return nil, ErrEmptyProgram
	}
	return &Program{code: slices.Clone(code)}, nil
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.code)
}

// At returns the instruction at index i.
func (p *Program) At(i int) Instruction {
	return p.code[i]
}

// Instructions returns a copy of the instruction sequence.
func (p *Program) Instructions() []Instruction {
	return slices.Clone(p.code)
}

// Listing returns the String() form of every instruction, in order.
func (p *Program) Listing() []string {
	out := make([]string, len(p.code))
	for i, in := range p.code {
		out[i] = in.String()
	}
	return out
}

// Disassemble returns a human-readable listing with one numbered
// instruction per line. Loop bodies are indented by nesting depth.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("; bfjit program (ir v%s)\n", IRVersion))
	sb.WriteString(fmt.Sprintf("; instructions: %d\n\n", len(p.code)))

	depth := 0
	for i, in := range p.code {
		if in.Op == OpLoopEnd && depth > 0 {
			depth--
		}
		sb.WriteString(fmt.Sprintf("%04d  %s%s\n", i, strings.Repeat("  ", depth), in))
		if in.Op == OpLoopStart {
			depth++
		}
	}

	return sb.String()
}
