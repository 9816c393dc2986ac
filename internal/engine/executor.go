package engine

// Executor runs a compiled program against its configured input and output.
//
// The interpreter (*Engine) is the only implementation. Any other backend
// must honor the same contract: identical observable output for the same
// program and input, and the same RuntimeError codes.
type Executor interface {
	Run() error
}

var _ Executor = (*Engine)(nil)
