// Package syntax parses regular expression patterns into an abstract syntax tree.
//
// Patterns are byte sequences and are matched byte by byte; the parser has no
// notion of character encodings.
package syntax

import (
	"fmt"
	"strings"
)

type Op uint8

const (
	OpEmpty     Op = iota // matches the empty string
	OpLiteral             // one byte out of Set
	OpConcat              // Subs in sequence
	OpAlternate           // first matching of Subs, left to right
	OpRepeat              // Subs[0] between Min and Max times
	OpGroup               // Subs[0], captured as group Cap unless Cap < 0
	OpAnchor              // zero-width assertion
)

// Unbounded is the Max of a repetition without an upper bound.
const Unbounded = -1

type AnchorKind uint8

const (
	BeginText AnchorKind = iota
	EndText
	BeginLine
	EndLine
	WordBoundary
	NoWordBoundary
)

var anchorNames = [...]string{
	BeginText:      `\A`,
	EndText:        `\z`,
	BeginLine:      `(?m:^)`,
	EndLine:        `(?m:$)`,
	WordBoundary:   `\b`,
	NoWordBoundary: `\B`,
}

func (k AnchorKind) String() string {
	if int(k) < len(anchorNames) {
		return anchorNames[k]
	}
	return fmt.Sprintf("anchor(%d)", k)
}

type Flags uint8

const (
	FoldCase  Flags = 1 << iota // ASCII case-insensitive literals and classes
	Multiline                   // ^ and $ match at line boundaries
)

type Node struct {
	Op     Op
	Set    ByteSet
	Subs   []*Node
	Min    int
	Max    int
	Greedy bool
	Cap    int
	Name   string
	Anchor AnchorKind
}

// Tree is the result of parsing one pattern.
type Tree struct {
	Root *Node
	// NumCaptures counts capture groups including group 0.
	NumCaptures int
	// Names holds the group names by capture index, "" for unnamed groups.
	Names []string
}

// CanBeEmpty reports whether n can match without consuming input.
func (n *Node) CanBeEmpty() bool {
	switch n.Op {
	case OpEmpty, OpAnchor:
		return true
	case OpLiteral:
		return false
	case OpConcat:
		for _, s := range n.Subs {
			if !s.CanBeEmpty() {
				return false
			}
		}
		return true
	case OpAlternate:
		for _, s := range n.Subs {
			if s.CanBeEmpty() {
				return true
			}
		}
		return false
	case OpRepeat:
		return n.Min == 0 || n.Subs[0].CanBeEmpty()
	case OpGroup:
		return n.Subs[0].CanBeEmpty()
	}
	return true
}

// String renders n back into pattern syntax. Group names and byte sets are
// normalized, so the result is equivalent to, not identical with, the input.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Op {
	case OpEmpty:
	case OpLiteral:
		if n.Set == dotSet {
			b.WriteByte('.')
			return
		}
		b.WriteString(n.Set.String())
	case OpConcat:
		for _, s := range n.Subs {
			if s.Op == OpAlternate {
				b.WriteString("(?:")
				s.write(b)
				b.WriteByte(')')
				continue
			}
			s.write(b)
		}
	case OpAlternate:
		for i, s := range n.Subs {
			if i > 0 {
				b.WriteByte('|')
			}
			s.write(b)
		}
	case OpRepeat:
		sub := n.Subs[0]
		if sub.Op == OpConcat || sub.Op == OpAlternate || sub.Op == OpRepeat {
			b.WriteString("(?:")
			sub.write(b)
			b.WriteByte(')')
		} else {
			sub.write(b)
		}
		switch {
		case n.Min == 0 && n.Max == Unbounded:
			b.WriteByte('*')
		case n.Min == 1 && n.Max == Unbounded:
			b.WriteByte('+')
		case n.Min == 0 && n.Max == 1:
			b.WriteByte('?')
		case n.Max == Unbounded:
			fmt.Fprintf(b, "{%d,}", n.Min)
		case n.Min == n.Max:
			fmt.Fprintf(b, "{%d}", n.Min)
		default:
			fmt.Fprintf(b, "{%d,%d}", n.Min, n.Max)
		}
		if !n.Greedy {
			b.WriteByte('?')
		}
	case OpGroup:
		switch {
		case n.Cap < 0:
			b.WriteString("(?:")
		case n.Name != "":
			b.WriteString("(?<" + n.Name + ">")
		default:
			b.WriteByte('(')
		}
		n.Subs[0].write(b)
		b.WriteByte(')')
	case OpAnchor:
		switch n.Anchor {
		case BeginText:
			b.WriteByte('^')
		case EndText:
			b.WriteByte('$')
		default:
			b.WriteString(n.Anchor.String())
		}
	}
}
