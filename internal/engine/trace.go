package engine

import "github.com/roach88/bfjit/internal/ir"

// Step is the machine state just before an instruction executes.
type Step struct {
	Index       int64          `json:"step"` // 1-based count of executed instructions
	PC          int            `json:"pc"`
	Instruction ir.Instruction `json:"-"`
	Pointer     uint           `json:"pointer"`
	Cell        byte           `json:"cell"`
}

// Tracer observes every step of a run. It must not retain the Engine.
type Tracer func(Step)
