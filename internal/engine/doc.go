// Package engine executes compiled programs.
//
// The Engine is a plain interpreter over an ir.Program: a fixed-size,
// zero-initialized byte buffer, a data pointer starting at cell 0 and a
// program counter that advances by one after every instruction.
//
// Execution is single-threaded and synchronous. The only blocking calls are
// the reads and writes on the injected input and output. Output is buffered;
// the buffer is flushed before every Input and when the run ends, whether
// it succeeds or fails.
//
// Every failure halts the run immediately and is reported as a
// *RuntimeError:
//
//	POINTER_OUT_OF_BOUNDS  pointer move below 0 or to/after the last cell
//	IO_FAILURE             the input or output returned an error
//	STEP_LIMIT_EXCEEDED    WithMaxSteps limit reached (off by default)
//
// End of input is not an error; the cell is left unchanged.
package engine
