package prog

import (
	"fmt"

	"github.com/mfroeh/gorex/regex/syntax"
)

const (
	// MaxCaptures limits the number of capture groups, group 0 included.
	MaxCaptures = 1000
	// MaxInsts limits the size of a compiled program.
	MaxInsts = 100000
)

type compiler struct {
	insts []Inst
	loops int
	err   error
}

// Compile lowers a syntax tree into a program:
//
//	save 0
//	<pattern>
//	save 1
//	match
func Compile(tree *syntax.Tree) (*Program, error) {
	if tree.NumCaptures > MaxCaptures {
		return nil, &CompileError{Reason: fmt.Sprintf("too many capture groups: %d, limit is %d", tree.NumCaptures-1, MaxCaptures-1)}
	}

	c := &compiler{}
	c.emit(Inst{Op: OpSave, N: 0})
	c.compile(tree.Root)
	c.emit(Inst{Op: OpSave, N: 1})
	c.emit(Inst{Op: OpMatch})
	if c.err != nil {
		return nil, c.err
	}

	names := make([]string, tree.NumCaptures)
	copy(names, tree.Names)
	return &Program{
		Insts:       c.insts,
		NumCaptures: tree.NumCaptures,
		NumLoops:    c.loops,
		Names:       names,
	}, nil
}

func (c *compiler) emit(i Inst) int {
	if len(c.insts) >= MaxInsts && c.err == nil {
		c.err = &CompileError{Reason: fmt.Sprintf("pattern too large: more than %d instructions", MaxInsts)}
	}
	c.insts = append(c.insts, i)
	return len(c.insts) - 1
}

func (c *compiler) next() int {
	return len(c.insts)
}

func (c *compiler) compile(n *syntax.Node) {
	if c.err != nil {
		return
	}

	switch n.Op {
	case syntax.OpEmpty:
	case syntax.OpLiteral:
		c.emit(Inst{Op: OpChar, Set: n.Set})
	case syntax.OpConcat:
		for _, sub := range n.Subs {
			c.compile(sub)
		}
	case syntax.OpAlternate:
		c.alternate(n.Subs)
	case syntax.OpRepeat:
		c.repeat(n)
	case syntax.OpGroup:
		if n.Cap < 0 {
			c.compile(n.Subs[0])
			return
		}
		c.emit(Inst{Op: OpSave, N: 2 * n.Cap})
		c.compile(n.Subs[0])
		c.emit(Inst{Op: OpSave, N: 2*n.Cap + 1})
	case syntax.OpAnchor:
		c.emit(Inst{Op: OpAssert, Anchor: n.Anchor})
	default:
		c.err = &CompileError{Reason: fmt.Sprintf("unexpected syntax node %d", n.Op)}
	}
}

// alternate compiles subs into splits nested to the right:
//
//	split L1, L2
//	L1: <first>
//	jmp end
//	L2: <rest>
//	end:
func (c *compiler) alternate(subs []*syntax.Node) {
	if len(subs) == 1 {
		c.compile(subs[0])
		return
	}

	split := c.emit(Inst{Op: OpSplit})
	c.insts[split].X = c.next()
	c.compile(subs[0])
	jmp := c.emit(Inst{Op: OpJump})
	c.insts[split].Y = c.next()
	c.alternate(subs[1:])
	c.insts[jmp].X = c.next()
}

// repeat unrolls Min mandatory copies, then either an unbounded loop or
// Max-Min nested optional copies.
func (c *compiler) repeat(n *syntax.Node) {
	body := n.Subs[0]
	for i := 0; i < n.Min && c.err == nil; i++ {
		c.compile(body)
	}

	if n.Max == syntax.Unbounded {
		c.loop(body, n.Greedy)
		return
	}

	// x{0,3} is (?:x(?:x(?:x)?)?)?
	var splits []int
	for i := n.Min; i < n.Max && c.err == nil; i++ {
		split := c.emit(Inst{Op: OpSplit})
		splits = append(splits, split)
		c.compile(body)
	}
	exit := c.next()
	for _, split := range splits {
		c.setSplit(split, split+1, exit, n.Greedy)
	}
}

// loop compiles an unbounded repetition of body:
//
//	L: split body, exit
//	body: [mark r]
//	<body>
//	[check r, exit]
//	jmp L
//	exit:
//
// The mark/check pair is only emitted if the body can match the empty
// string. It stops the loop once an iteration consumed nothing.
func (c *compiler) loop(body *syntax.Node, greedy bool) {
	split := c.emit(Inst{Op: OpSplit})
	guard := body.CanBeEmpty()

	reg, check := 0, -1
	if guard {
		reg = c.loops
		c.loops++
		c.emit(Inst{Op: OpMark, N: reg})
	}
	c.compile(body)
	if guard {
		check = c.emit(Inst{Op: OpCheck, N: reg})
	}
	c.emit(Inst{Op: OpJump, X: split})

	exit := c.next()
	if check >= 0 {
		c.insts[check].X = exit
	}
	c.setSplit(split, split+1, exit, greedy)
}

// setSplit points a split at body and exit. Greedy splits prefer the body,
// non-greedy ones prefer to stop.
func (c *compiler) setSplit(split, body, exit int, greedy bool) {
	if c.err != nil {
		return
	}
	if greedy {
		c.insts[split].X, c.insts[split].Y = body, exit
	} else {
		c.insts[split].X, c.insts[split].Y = exit, body
	}
}
