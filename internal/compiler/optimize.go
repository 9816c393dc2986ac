package compiler

import "github.com/roach88/bfjit/internal/ir"

// Optimize folds runs of identical counted instructions into one and
// re-derives every loop target in the compacted index space.
//
// Compaction happens in place: the write cursor never passes the read
// cursor, and the returned slice shares code's backing array.
//
// Folding rules:
//   - AddData/SubData runs sum with byte wraparound
//   - AddPointer/SubPointer runs sum with uint wraparound; bounds are the
//     engine's concern
//   - Input/Output are copied one at a time
//   - LoopStart/LoopEnd are never merged, and end any run in progress
//
// code must satisfy the loop invariant established by Resolve. Stale
// targets in code are ignored; only the bracket structure is used.
func Optimize(code []ir.Instruction) []ir.Instruction {
	var loops []int

	w := 0
	for r := 0; r < len(code); {
		in := code[r]

		switch in.Op {
		case ir.OpAddData, ir.OpSubData:
			var sum uint8
			for r < len(code) && code[r].Op == in.Op {
				sum += uint8(code[r].Count)
				r++
			}
			code[w] = ir.Instruction{Op: in.Op, Count: uint(sum)}

		case ir.OpAddPointer, ir.OpSubPointer:
			var sum uint
			for r < len(code) && code[r].Op == in.Op {
				sum += code[r].Count
				r++
			}
			code[w] = ir.Instruction{Op: in.Op, Count: sum}

		case ir.OpInput, ir.OpOutput:
			code[w] = in
			r++

		case ir.OpLoopStart:
			loops = append(loops, w)
			code[w] = ir.LoopStart(0)
			r++

		case ir.OpLoopEnd:
			if len(loops) == 0 {
				panic("compiler: Optimize called with unbalanced loops")
			}
			start := loops[len(loops)-1]
			loops = loops[:len(loops)-1]

			code[start].Target = w
			code[w] = ir.LoopEnd(start)
			r++

		default:
			panic("compiler: unknown op " + in.Op.String())
		}

		w++
	}

	return code[:w]
}
