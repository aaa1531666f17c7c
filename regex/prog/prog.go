// Package prog compiles syntax trees into programs for the backtracking
// matcher in package vm.
package prog

import (
	"fmt"
	"strings"

	"github.com/mfroeh/gorex/regex/syntax"
)

type OpCode uint8

const (
	OpMatch  OpCode = iota // terminate with success
	OpChar                 // consume one byte out of Set
	OpJump                 // continue at X
	OpSplit                // try X, on failure Y
	OpSave                 // record the offset in slot N
	OpAssert               // zero-width assertion Anchor
	OpMark                 // record the offset in loop register N
	OpCheck                // continue at X if nothing was consumed since Mark N
)

var opNames = [...]string{
	OpMatch:  "match",
	OpChar:   "char",
	OpJump:   "jmp",
	OpSplit:  "split",
	OpSave:   "save",
	OpAssert: "assert",
	OpMark:   "mark",
	OpCheck:  "check",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", op)
}

type Inst struct {
	Op     OpCode
	Set    syntax.ByteSet    // OpChar
	X      int               // OpJump, OpSplit (preferred), OpCheck (loop exit)
	Y      int               // OpSplit (alternative)
	N      int               // OpSave slot, OpMark and OpCheck register
	Anchor syntax.AnchorKind // OpAssert
}

func (i Inst) String() string {
	switch i.Op {
	case OpChar:
		return fmt.Sprintf("char %s", i.Set)
	case OpJump:
		return fmt.Sprintf("jmp %d", i.X)
	case OpSplit:
		return fmt.Sprintf("split %d, %d", i.X, i.Y)
	case OpSave:
		return fmt.Sprintf("save %d", i.N)
	case OpAssert:
		return fmt.Sprintf("assert %s", i.Anchor)
	case OpMark:
		return fmt.Sprintf("mark r%d", i.N)
	case OpCheck:
		return fmt.Sprintf("check r%d, %d", i.N, i.X)
	}
	return i.Op.String()
}

// Program is a compiled pattern. It is never modified after compilation and
// can be shared between any number of concurrent searches.
type Program struct {
	Insts []Inst
	// NumCaptures counts capture groups including group 0, the whole match.
	NumCaptures int
	// NumLoops is the number of loop registers used by OpMark and OpCheck.
	NumLoops int
	// Names holds group names by capture index.
	Names []string
}

// NumSlots is the number of capture slots a match produces.
func (p *Program) NumSlots() int {
	return 2 * p.NumCaptures
}

// String returns a listing of the program, one instruction per line.
func (p *Program) String() string {
	var b strings.Builder
	for pc, inst := range p.Insts {
		fmt.Fprintf(&b, "%4d  %s\n", pc, inst)
	}
	return b.String()
}

// Validate checks that all jump targets and register numbers are in range.
// Compile always produces valid programs; Validate exists for programs that
// were built by hand or by generated code.
func (p *Program) Validate() error {
	if len(p.Insts) == 0 {
		return &CompileError{Reason: "empty program"}
	}
	if p.NumCaptures < 1 {
		return &CompileError{Reason: "program has no group 0"}
	}
	if len(p.Names) != 0 && len(p.Names) != p.NumCaptures {
		return &CompileError{Reason: "group names do not match the number of captures"}
	}

	target := func(pc, t int) error {
		if t < 0 || t >= len(p.Insts) {
			return &CompileError{Reason: fmt.Sprintf("instruction %d jumps to %d, outside of the program", pc, t)}
		}
		return nil
	}

	hasMatch := false
	for pc, inst := range p.Insts {
		var err error
		switch inst.Op {
		case OpMatch:
			hasMatch = true
		case OpChar:
			err = target(pc, pc+1)
		case OpJump:
			err = target(pc, inst.X)
		case OpSplit:
			if err = target(pc, inst.X); err == nil {
				err = target(pc, inst.Y)
			}
		case OpSave:
			if inst.N < 0 || inst.N >= p.NumSlots() {
				err = &CompileError{Reason: fmt.Sprintf("instruction %d saves to slot %d of %d", pc, inst.N, p.NumSlots())}
			} else {
				err = target(pc, pc+1)
			}
		case OpAssert:
			err = target(pc, pc+1)
		case OpMark, OpCheck:
			if inst.N < 0 || inst.N >= p.NumLoops {
				err = &CompileError{Reason: fmt.Sprintf("instruction %d uses loop register %d of %d", pc, inst.N, p.NumLoops)}
			} else if err = target(pc, pc+1); err == nil && inst.Op == OpCheck {
				err = target(pc, inst.X)
			}
		default:
			err = &CompileError{Reason: fmt.Sprintf("instruction %d has unknown opcode %d", pc, inst.Op)}
		}
		if err != nil {
			return err
		}
	}
	if !hasMatch {
		return &CompileError{Reason: "program has no match instruction"}
	}
	return nil
}
