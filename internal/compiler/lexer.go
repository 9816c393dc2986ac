package compiler

import "github.com/roach88/bfjit/internal/ir"

// pendingLoop is an open '[' waiting for its ']'.
type pendingLoop struct {
	index  int // instruction index of the LoopStart placeholder
	line   int
	column int
}

// Resolve turns source text into a flat instruction sequence with resolved
// loop targets.
//
// The scan is single-pass. Any character other than the eight instruction
// symbols is a comment. On '[' a placeholder LoopStart is emitted and its
// index pushed; on ']' the matching start is popped and both instructions
// are made to target each other's index.
//
// Returns a *LexError for an unmatched ']' (at its own position) or an
// unmatched '[' (at the position of the oldest one still open).
// The returned slice may be empty; see Build for the EmptyProgram check.
func Resolve(source string) ([]ir.Instruction, error) {
	code := make([]ir.Instruction, 0, len(source))
	var open []pendingLoop

	line, column := 1, 0
	for _, r := range source {
		column++

		switch r {
		case '\n':
			line++
			column = 0
		case '+':
			code = append(code, ir.AddData(1))
		case '-':
			code = append(code, ir.SubData(1))
		case '>':
			code = append(code, ir.AddPointer(1))
		case '<':
			code = append(code, ir.SubPointer(1))
		case ',':
			code = append(code, ir.Input())
		case '.':
			code = append(code, ir.Output())
		case '[':
			open = append(open, pendingLoop{index: len(code), line: line, column: column})
			code = append(code, ir.LoopStart(0))
		case ']':
			if len(open) == 0 {
				return nil, &LexError{Kind: KindUnmatchedClosingBracket, Line: line, Column: column}
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]

			code[start.index].Target = len(code)
			code = append(code, ir.LoopEnd(start.index))
		}
	}

	if len(open) > 0 {
		oldest := open[0]
		return nil, &LexError{Kind: KindUnmatchedOpeningBracket, Line: oldest.line, Column: oldest.column}
	}

	return code, nil
}
