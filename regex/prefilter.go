package regex

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/mfroeh/gorex/regex/prog"
	"github.com/mfroeh/gorex/regex/syntax"
)

// A prefilter skips offsets at which a match cannot start. It is only built
// for programs that cannot match the empty string, so running out of
// candidates means there is no match.
type prefilter interface {
	// next returns the first candidate offset at or after from, or -1.
	next(subject []byte, from int) int
}

func newPrefilter(p *prog.Program) prefilter {
	lits := p.LiteralPrefixes()
	switch {
	case len(lits) == 1 && len(lits[0]) > 1:
		return literalPrefilter{lit: lits[0]}
	case len(lits) > 1 && shortest(lits) > 1 && independent(lits):
		if pf, err := newAhoCorasickPrefilter(lits); err == nil {
			return pf
		}
	}

	set, ok := p.FirstBytes()
	if !ok || set.Len() == 256 {
		return nil
	}
	if c, ok := set.Single(); ok {
		return bytePrefilter{c: c}
	}
	return byteSetPrefilter{set: set}
}

func shortest(lits [][]byte) int {
	n := len(lits[0])
	for _, lit := range lits[1:] {
		n = min(n, len(lit))
	}
	return n
}

// independent reports whether no literal occurs inside another one. Only then
// is the first occurrence found by the automaton guaranteed to be the one
// that starts first.
func independent(lits [][]byte) bool {
	for i, a := range lits {
		for j, b := range lits {
			if i != j && bytes.Contains(b, a) {
				return false
			}
		}
	}
	return true
}

type literalPrefilter struct {
	lit []byte
}

func (f literalPrefilter) next(subject []byte, from int) int {
	i := bytes.Index(subject[from:], f.lit)
	if i < 0 {
		return -1
	}
	return from + i
}

type bytePrefilter struct {
	c byte
}

func (f bytePrefilter) next(subject []byte, from int) int {
	i := bytes.IndexByte(subject[from:], f.c)
	if i < 0 {
		return -1
	}
	return from + i
}

type byteSetPrefilter struct {
	set syntax.ByteSet
}

func (f byteSetPrefilter) next(subject []byte, from int) int {
	for i := from; i < len(subject); i++ {
		if f.set.Has(subject[i]) {
			return i
		}
	}
	return -1
}

type ahoCorasickPrefilter struct {
	auto *ahocorasick.Automaton
}

func newAhoCorasickPrefilter(lits [][]byte) (*ahoCorasickPrefilter, error) {
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &ahoCorasickPrefilter{auto: auto}, nil
}

func (f *ahoCorasickPrefilter) next(subject []byte, from int) int {
	if from >= len(subject) {
		return -1
	}
	m := f.auto.Find(subject, from)
	if m == nil {
		return -1
	}
	return m.Start
}
