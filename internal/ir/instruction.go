package ir

import "fmt"

// Op identifies the variant of an Instruction.
// The set is closed: every switch over Op must handle all eight cases.
type Op uint8

const (
	OpAddData    Op = iota // +  add Count to the current cell (mod 256)
	OpSubData              // -  subtract Count from the current cell (mod 256)
	OpAddPointer           // >  move the data pointer forward by Count
	OpSubPointer           // <  move the data pointer backward by Count
	OpInput                // ,  read one byte into the current cell
	OpOutput               // .  write the current cell as one byte
	OpLoopStart            // [  jump to Target if the current cell is zero
	OpLoopEnd              // ]  jump to Target if the current cell is non-zero
)

var opNames = [...]string{
	OpAddData:    "AddData",
	OpSubData:    "SubData",
	OpAddPointer: "AddPointer",
	OpSubPointer: "SubPointer",
	OpInput:      "Input",
	OpOutput:     "Output",
	OpLoopStart:  "LoopStart",
	OpLoopEnd:    "LoopEnd",
}

// String returns the variant name (e.g. "AddData").
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// IsCounted reports whether the op carries a repeat count and can be folded.
func (op Op) IsCounted() bool {
	switch op {
	case OpAddData, OpSubData, OpAddPointer, OpSubPointer:
		return true
	}
	return false
}

// IsJump reports whether the op carries a jump target.
func (op Op) IsJump() bool {
	return op == OpLoopStart || op == OpLoopEnd
}

// Instruction is a single tagged instruction.
//
// Only the payload matching Op is meaningful:
//   - AddData/SubData: Count in [0, 255]
//   - AddPointer/SubPointer: Count in the host's uint range
//   - LoopStart/LoopEnd: Target, the index of the matching bracket
//   - Input/Output: no payload
//
// Use the constructor functions below; they keep unused payload fields zero
// so that instructions compare with ==.
type Instruction struct {
	Op     Op
	Count  uint
	Target int
}

// AddData returns an AddData instruction.
func AddData(n uint8) Instruction { return Instruction{Op: OpAddData, Count: uint(n)} }

// SubData returns a SubData instruction.
func SubData(n uint8) Instruction { return Instruction{Op: OpSubData, Count: uint(n)} }

// AddPointer returns an AddPointer instruction.
func AddPointer(n uint) Instruction { return Instruction{Op: OpAddPointer, Count: n} }

// SubPointer returns a SubPointer instruction.
func SubPointer(n uint) Instruction { return Instruction{Op: OpSubPointer, Count: n} }

// Input returns an Input instruction.
func Input() Instruction { return Instruction{Op: OpInput} }

// Output returns an Output instruction.
func Output() Instruction { return Instruction{Op: OpOutput} }

// LoopStart returns a LoopStart instruction targeting the matching LoopEnd.
func LoopStart(target int) Instruction { return Instruction{Op: OpLoopStart, Target: target} }

// LoopEnd returns a LoopEnd instruction targeting the matching LoopStart.
func LoopEnd(target int) Instruction { return Instruction{Op: OpLoopEnd, Target: target} }

// String renders the instruction the way listings show it,
// e.g. "AddData(6)", "LoopEnd(0)", "Output".
func (in Instruction) String() string {
	switch in.Op {
	case OpAddData, OpSubData, OpAddPointer, OpSubPointer:
		return fmt.Sprintf("%s(%d)", in.Op, in.Count)
	case OpLoopStart, OpLoopEnd:
		return fmt.Sprintf("%s(%d)", in.Op, in.Target)
	default:
		return in.Op.String()
	}
}

// Symbol returns the source character the op is written as.
func (op Op) Symbol() byte {
	switch op {
	case OpAddData:
		return '+'
	case OpSubData:
		return '-'
	case OpAddPointer:
		return '>'
	case OpSubPointer:
		return '<'
	case OpInput:
		return ','
	case OpOutput:
		return '.'
	case OpLoopStart:
		return '['
	case OpLoopEnd:
		return ']'
	}
	return '?'
}
