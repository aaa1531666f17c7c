package prog

import (
	"bytes"
	"slices"

	"github.com/mfroeh/gorex/regex/syntax"
)

const (
	maxPrefixLen   = 32
	maxPrefixCount = 64
)

// leading visits every instruction that can be the first one to consume input
// or to end a match, following all zero-width instructions from the start of
// the program. visit returns false to stop the walk; leading returns false if
// it was stopped. beginText reports whether a \A assertion ends a path.
func (p *Program) leading(beginText bool, visit func(pc int) bool) bool {
	seen := make([]bool, len(p.Insts))
	stack := []int{0}
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[pc] {
			continue
		}
		seen[pc] = true

		inst := p.Insts[pc]
		switch inst.Op {
		case OpSave, OpMark:
			stack = append(stack, pc+1)
		case OpAssert:
			if beginText && inst.Anchor == syntax.BeginText {
				continue
			}
			stack = append(stack, pc+1)
		case OpJump:
			stack = append(stack, inst.X)
		case OpSplit:
			stack = append(stack, inst.Y, inst.X)
		case OpCheck:
			stack = append(stack, inst.X, pc+1)
		default:
			if !visit(pc) {
				return false
			}
		}
	}
	return true
}

// AnchoredStart reports whether every match must begin at offset 0 because
// each path through the program passes a \A assertion before consuming input.
func (p *Program) AnchoredStart() bool {
	return p.leading(true, func(int) bool { return false })
}

// FirstBytes returns the set of bytes a match can start with. It returns
// false if the program can match the empty string.
func (p *Program) FirstBytes() (syntax.ByteSet, bool) {
	var set syntax.ByteSet
	ok := p.leading(false, func(pc int) bool {
		inst := p.Insts[pc]
		if inst.Op != OpChar {
			return false
		}
		set.AddSet(inst.Set)
		return true
	})
	return set, ok
}

// LiteralPrefixes returns byte strings such that every match starts with one
// of them. It returns nil if there is no such set of reasonable size, which is
// the case as soon as one path starts with anything but a single byte.
func (p *Program) LiteralPrefixes() [][]byte {
	var prefixes [][]byte
	ok := p.leading(false, func(pc int) bool {
		if p.Insts[pc].Op != OpChar {
			return false
		}
		prefix := p.literalAt(pc)
		if prefix == nil {
			return false
		}
		if !slices.ContainsFunc(prefixes, func(q []byte) bool { return bytes.Equal(q, prefix) }) {
			prefixes = append(prefixes, prefix)
		}
		return len(prefixes) <= maxPrefixCount
	})
	if !ok {
		return nil
	}
	return prefixes
}

// literalAt collects the run of single-byte instructions starting at pc.
func (p *Program) literalAt(pc int) []byte {
	var lit []byte
	for pc < len(p.Insts) && len(lit) < maxPrefixLen {
		inst := p.Insts[pc]
		if inst.Op == OpSave {
			pc++
			continue
		}
		if inst.Op != OpChar {
			break
		}
		c, ok := inst.Set.Single()
		if !ok {
			break
		}
		lit = append(lit, c)
		pc++
	}
	return lit
}
