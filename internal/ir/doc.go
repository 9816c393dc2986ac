// Package ir provides the instruction set and program container for bfjit.
//
// All other internal packages import ir; ir imports nothing internal. The
// compiler produces []Instruction, wraps it with NewProgram, and the engine
// consumes the resulting *Program.
//
// Key design constraints:
//   - Instruction is a closed tagged variant: Op plus a payload struct
//   - Loop targets are self-referential indices: a LoopStart at i targeting
//     j implies a LoopEnd at j targeting i
//   - A Program is never empty and never mutated after construction
//   - Program identity is a SHA-256 over canonical JSON (see hash.go)
package ir
