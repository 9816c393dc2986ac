package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/bfjit/internal/ir"
)

// DefaultMemorySize is the number of memory cells, one byte each.
const DefaultMemorySize = 4 << 20

// Stats summarizes a run.
type Stats struct {
	Steps        int64 `json:"steps"`
	BytesRead    int64 `json:"bytes_read"`
	BytesWritten int64 `json:"bytes_written"`
}

// Engine interprets one Program.
//
// An Engine is not safe for concurrent use. Each call to Run starts from
// zeroed memory with the pointer at cell 0.
type Engine struct {
	code   []ir.Instruction
	memory []byte

	pointer uint
	pc      int

	in  io.Reader
	out *bufio.Writer

	memorySize int
	quota      *QuotaEnforcer
	tracer     Tracer
	logger     *slog.Logger
	stats      Stats
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithInput sets the byte source for Input instructions. Default: os.Stdin.
func WithInput(r io.Reader) EngineOption {
	return func(e *Engine) {
		e.in = r
	}
}

// WithOutput sets the byte sink for Output instructions. Default: os.Stdout.
func WithOutput(w io.Writer) EngineOption {
	return func(e *Engine) {
		if w == nil {
			e.out = nil
			return
		}
		e.out = bufio.NewWriter(w)
	}
}

// WithMemorySize sets the number of memory cells.
//
// Default: 4 MiB (DefaultMemorySize)
func WithMemorySize(n int) EngineOption {
	return func(e *Engine) {
		e.memorySize = n
	}
}

// WithMaxSteps caps the number of executed instructions per run.
//
// Default: 0 (unlimited). Use a limit when running untrusted programs that
// may never terminate.
func WithMaxSteps(maxSteps int64) EngineOption {
	return func(e *Engine) {
		e.quota = NewQuotaEnforcer(maxSteps)
	}
}

// WithTracer installs a hook called before every instruction executes.
func WithTracer(t Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithLogger sets the logger used for run lifecycle messages.
// Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine for prog.
//
// Returns ir.ErrEmptyProgram if prog is nil or has no instructions, which
// can only happen for a Program not built by ir.NewProgram.
func New(prog *ir.Program, opts ...EngineOption) (*Engine, error) {
	if prog == nil || prog.Len() == 0 {
		return nil, ir.ErrEmptyProgram
	}

	e := &Engine{
		code:       prog.Instructions(),
		in:         os.Stdin,
		out:        bufio.NewWriter(os.Stdout),
		memorySize: DefaultMemorySize,
		quota:      NewQuotaEnforcer(0),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memorySize <= 0 {
		return nil, fmt.Errorf("memory size must be positive, got %d", e.memorySize)
	}
	if e.quota.MaxSteps() < 0 {
		return nil, fmt.Errorf("max steps must not be negative, got %d", e.quota.MaxSteps())
	}
	if e.in == nil || e.out == nil {
		return nil, errors.New("input and output must not be nil")
	}

	return e, nil
}

// Run executes the program to completion or to the first runtime error.
//
// The returned error, if any, is a *RuntimeError. Buffered output is flushed
// before Run returns in both cases; a flush failure is reported only when
// the run otherwise succeeded.
func (e *Engine) Run() error {
	e.reset()
	e.logger.Debug("run starting",
		"instructions", len(e.code),
		"memory_size", e.memorySize,
		"max_steps", e.quota.MaxSteps())

	err := e.exec()
	if flushErr := e.out.Flush(); flushErr != nil && err == nil {
		err = newIOError(e.pc, ir.Output(), e.pointer, flushErr)
	}

	e.stats.Steps = e.quota.Current()
	if IsStepLimitError(err) {
		// The instruction that tripped the limit never ran.
		e.stats.Steps--
	}
	if err != nil {
		e.logger.Debug("run failed", "steps", e.stats.Steps, "error", err)
		return err
	}
	e.logger.Debug("run finished",
		"steps", e.stats.Steps,
		"bytes_read", e.stats.BytesRead,
		"bytes_written", e.stats.BytesWritten)
	return nil
}

// Stats returns counters for the most recent run.
func (e *Engine) Stats() Stats {
	return e.stats
}

func (e *Engine) reset() {
	if len(e.memory) != e.memorySize {
		e.memory = make([]byte, e.memorySize)
	} else {
		clear(e.memory)
	}
	e.pointer = 0
	e.pc = 0
	e.stats = Stats{}
	e.quota.Reset()
}

// exec is the dispatch loop. Each case leaves e.pc on the instruction to
// run next, minus one; the increment happens at the bottom of the loop.
func (e *Engine) exec() error {
	var buf [1]byte
	memLen := uint(len(e.memory))

	for e.pc < len(e.code) {
		in := e.code[e.pc]

		if err := e.quota.Check(); err != nil {
			var se *StepsExceededError
			errors.As(err, &se)
			return newStepLimitError(e.pc, in, e.pointer, se)
		}
		if e.tracer != nil {
			e.tracer(Step{
				Index:       e.quota.Current(),
				PC:          e.pc,
				Instruction: in,
				Pointer:     e.pointer,
				Cell:        e.memory[e.pointer],
			})
		}

		switch in.Op {
		case ir.OpAddData:
			e.memory[e.pointer] += uint8(in.Count)

		case ir.OpSubData:
			e.memory[e.pointer] -= uint8(in.Count)

		case ir.OpAddPointer:
			if in.Count >= memLen-e.pointer {
				return newPointerError(e.pc, in, e.pointer, len(e.memory))
			}
			e.pointer += in.Count

		case ir.OpSubPointer:
			if in.Count > e.pointer {
				return newPointerError(e.pc, in, e.pointer, len(e.memory))
			}
			e.pointer -= in.Count

		case ir.OpOutput:
			if err := e.out.WriteByte(e.memory[e.pointer]); err != nil {
				return newIOError(e.pc, in, e.pointer, err)
			}
			e.stats.BytesWritten++

		case ir.OpInput:
			if err := e.out.Flush(); err != nil {
				return newIOError(e.pc, ir.Output(), e.pointer, err)
			}
			_, err := io.ReadFull(e.in, buf[:])
			switch {
			case err == nil:
				e.memory[e.pointer] = buf[0]
				e.stats.BytesRead++
			case errors.Is(err, io.EOF):
				// End of input leaves the cell unchanged.
			default:
				return newIOError(e.pc, in, e.pointer, err)
			}

		case ir.OpLoopStart:
			if e.memory[e.pointer] == 0 {
				e.pc = in.Target
			}

		case ir.OpLoopEnd:
			if e.memory[e.pointer] != 0 {
				e.pc = in.Target
			}

		default:
			panic(fmt.Sprintf("engine: unknown op %s at pc %d", in.Op, e.pc))
		}

		e.pc++
	}

	return nil
}
