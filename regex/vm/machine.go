// Package vm executes compiled programs with a backtracking interpreter.
//
// Backtracking uses an explicit stack instead of recursion. A frame either
// resumes execution at an alternative branch or restores a register that was
// overwritten on the path being abandoned, so captures recorded speculatively
// are undone on the way back.
package vm

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mfroeh/gorex/regex/prog"
)

var (
	// ErrStepLimitExceeded is returned when a search executed more
	// instructions than Options.MaxSteps allows.
	ErrStepLimitExceeded = errors.New("backtracking step limit exceeded")
	// ErrTimeout is returned, wrapped together with the context error, when
	// the context of a search is done before the search finished.
	ErrTimeout = errors.New("match timed out")
)

// how many steps pass between two looks at the context
const ctxCheckInterval = 1 << 10

type Options struct {
	// MaxSteps bounds the instructions executed over all Run calls on one
	// Machine until the next Reset. Zero means no bound.
	MaxSteps int
	// Trace, if set, receives one line per executed instruction.
	Trace *log.Logger
}

type frame struct {
	// restore frames put old into register reg, branch frames resume at
	// instruction reg with input offset old.
	restore bool
	reg     int
	old     int
}

// Machine holds the mutable state of a search. A Machine is used by one
// goroutine at a time; the program it runs is shared.
type Machine struct {
	prog  *prog.Program
	ctx   context.Context
	opts  Options
	input []byte

	// capture slots, followed by loop registers
	regs  []int
	stack []frame
	steps int
}

func New(p *prog.Program) *Machine {
	return &Machine{
		prog: p,
		regs: make([]int, p.NumSlots()+p.NumLoops),
	}
}

// Reset prepares m for searching input and clears the step count.
// ctx may be nil.
func (m *Machine) Reset(ctx context.Context, input []byte, opts Options) {
	m.ctx = ctx
	m.input = input
	m.opts = opts
	m.steps = 0
	m.stack = m.stack[:0]
}

// Steps returns the number of instructions executed since the last Reset.
func (m *Machine) Steps() int {
	return m.steps
}

// Run makes one match attempt that starts exactly at offset start. It returns
// the capture slots of the first match in priority order, or nil if there is
// none. Unset slots are -1.
func (m *Machine) Run(start int) ([]int, error) {
	for i := range m.regs {
		m.regs[i] = -1
	}
	m.stack = m.stack[:0]

	var (
		insts = m.prog.Insts
		input = m.input
		slots = m.prog.NumSlots()
		pc    = 0
		pos   = start
	)

	for {
		m.steps++
		if m.opts.MaxSteps > 0 && m.steps > m.opts.MaxSteps {
			return nil, ErrStepLimitExceeded
		}
		if m.ctx != nil && m.steps%ctxCheckInterval == 0 {
			if err := m.ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
			}
		}

		inst := &insts[pc]
		if m.opts.Trace != nil {
			m.opts.Trace.Printf("step %d: at %d, pc %d: %s", m.steps, pos, pc, inst)
		}

		ok := true
		switch inst.Op {
		case prog.OpMatch:
			out := make([]int, slots)
			copy(out, m.regs[:slots])
			return out, nil
		case prog.OpChar:
			if pos < len(input) && inst.Set.Has(input[pos]) {
				pos++
				pc++
			} else {
				ok = false
			}
		case prog.OpJump:
			pc = inst.X
		case prog.OpSplit:
			m.stack = append(m.stack, frame{reg: inst.Y, old: pos})
			pc = inst.X
		case prog.OpSave:
			m.set(inst.N, pos)
			pc++
		case prog.OpAssert:
			if Assert(inst.Anchor, input, pos) {
				pc++
			} else {
				ok = false
			}
		case prog.OpMark:
			m.set(slots+inst.N, pos)
			pc++
		case prog.OpCheck:
			if m.regs[slots+inst.N] == pos {
				// the last iteration was empty, leave the loop
				pc = inst.X
			} else {
				pc++
			}
		default:
			panic(fmt.Sprintf("vm: unexpected opcode %v at %d", inst.Op, pc))
		}

		if ok {
			continue
		}

		var found bool
		if pc, pos, found = m.backtrack(); !found {
			return nil, nil
		}
	}
}

// set writes v into register r and remembers the old value on the stack.
func (m *Machine) set(r, v int) {
	m.stack = append(m.stack, frame{restore: true, reg: r, old: m.regs[r]})
	m.regs[r] = v
}

// backtrack unwinds the stack to the most recent branch frame.
func (m *Machine) backtrack() (pc, pos int, ok bool) {
	for len(m.stack) > 0 {
		f := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		if f.restore {
			m.regs[f.reg] = f.old
			continue
		}
		return f.reg, f.old, true
	}
	return 0, 0, false
}

// Run is a one-shot helper that matches p against input at start.
func Run(ctx context.Context, p *prog.Program, input []byte, start int, opts Options) ([]int, error) {
	m := New(p)
	m.Reset(ctx, input, opts)
	return m.Run(start)
}
