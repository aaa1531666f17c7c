// Package regex is a byte-oriented backtracking regular expression engine.
//
// Patterns are compiled into a program for a backtracking virtual machine.
// Matching is leftmost, and among the matches starting at the leftmost
// position the one found first in priority order wins: alternatives are
// tried left to right, greedy repetitions try to consume more first and
// non-greedy repetitions try to stop first. This is the semantics of Perl,
// Oniguruma and Go's regexp package, not the leftmost-longest rule of POSIX.
//
// Supported syntax: literals, '.', bracket expressions with ranges, negation,
// POSIX classes ([:alpha:], ...) and perl classes (\d \w \s and negations),
// groups ( ), (?: ), (?<name> ), alternation, the repetitions * + ? {m}
// {m,} {m,n} with non-greedy variants, and the assertions ^ $ \A \z \b \B.
package regex

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/mfroeh/gorex/regex/prog"
	"github.com/mfroeh/gorex/regex/syntax"
	"github.com/mfroeh/gorex/regex/vm"
)

const version = "1.0.0"

// DefaultStepLimit is the number of VM instructions one search may execute
// on top of its linear allowance, unless Options.StepLimit says otherwise.
// The linear allowance is one program length per subject byte, so that
// scanning a large input without backtracking never runs out of steps.
const DefaultStepLimit = 10_000_000

type (
	SyntaxError  = syntax.SyntaxError
	CompileError = prog.CompileError
)

var (
	ErrStepLimitExceeded = vm.ErrStepLimitExceeded
	ErrTimeout           = vm.ErrTimeout
)

type Options struct {
	// IgnoreCase makes ASCII letters match both cases.
	IgnoreCase bool
	// Multiline makes ^ and $ match at the start and end of every line.
	Multiline bool
	// StepLimit bounds the backtracking work of a single search, on top of
	// the linear allowance described at DefaultStepLimit. Zero selects
	// DefaultStepLimit, a negative value removes the bound.
	StepLimit int
	// Trace receives a line per executed VM instruction. Only useful for
	// debugging small inputs.
	Trace *log.Logger
}

func (o Options) flags() syntax.Flags {
	var f syntax.Flags
	if o.IgnoreCase {
		f |= syntax.FoldCase
	}
	if o.Multiline {
		f |= syntax.Multiline
	}
	return f
}

// stepBudget returns the VM step bound for searching a subject of n bytes
// with a program of size insts, or 0 for no bound.
func (o Options) stepBudget(insts, n int) int {
	limit := o.StepLimit
	switch {
	case limit == 0:
		limit = DefaultStepLimit
	case limit < 0:
		return 0
	}
	budget := limit + insts*(n+1)
	if budget < limit {
		return 0
	}
	return budget
}

// Regex is a compiled regular expression. It is safe for concurrent use.
type Regex struct {
	pattern   string
	prog      *prog.Program
	opts      Options
	anchored  bool
	prefilter prefilter
	machines  sync.Pool
}

// Version returns the version of the engine.
func Version() string {
	return version
}

func Compile(pattern string) (*Regex, error) {
	return CompileWith(pattern, Options{})
}

func CompileWith(pattern string, opts Options) (*Regex, error) {
	tree, err := syntax.Parse([]byte(pattern), opts.flags())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", pattern, err)
	}
	p, err := prog.Compile(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %q: %w", pattern, err)
	}
	return newRegex(pattern, p, opts), nil
}

// MustCompile is like Compile but panics if the pattern cannot be compiled.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("regex: " + err.Error())
	}
	return re
}

// FromProgram wraps an already compiled program, typically one written out by
// the gorex gen command. The flags in opts have no effect since the program
// was compiled with its own; the search settings apply.
func FromProgram(pattern string, p *prog.Program, opts Options) (*Regex, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program for %q: %w", pattern, err)
	}
	return newRegex(pattern, p, opts), nil
}

func newRegex(pattern string, p *prog.Program, opts Options) *Regex {
	re := &Regex{
		pattern:   pattern,
		prog:      p,
		opts:      opts,
		anchored:  p.AnchoredStart(),
		prefilter: newPrefilter(p),
	}
	re.machines.New = func() any { return vm.New(p) }
	return re
}

// String returns the source pattern.
func (re *Regex) String() string {
	return re.pattern
}

// Program returns the compiled program. It must not be modified.
func (re *Regex) Program() *prog.Program {
	return re.prog
}

// NumSubexp returns the number of capture groups, not counting group 0.
func (re *Regex) NumSubexp() int {
	return re.prog.NumCaptures - 1
}

// SubexpNames returns the names of the capture groups by index. Unnamed
// groups, and group 0, have the name "".
func (re *Regex) SubexpNames() []string {
	names := make([]string, re.prog.NumCaptures)
	copy(names, re.prog.Names)
	return names
}

// SubexpIndex returns the index of the group with the given name, or -1.
func (re *Regex) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	return slices.Index(re.prog.Names, name)
}

// Options returns the options the expression was compiled with.
func (re *Regex) Options() Options {
	return re.opts
}

func (re *Regex) machine(ctx context.Context, subject []byte) *vm.Machine {
	m := re.machines.Get().(*vm.Machine)
	m.Reset(ctx, subject, vm.Options{
		MaxSteps: re.opts.stepBudget(len(re.prog.Insts), len(subject)),
		Trace:    re.opts.Trace,
	})
	return m
}

func (re *Regex) release(m *vm.Machine) {
	// don't keep the subject alive through the pool
	m.Reset(nil, nil, vm.Options{})
	re.machines.Put(m)
}
