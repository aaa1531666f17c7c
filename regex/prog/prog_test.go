package prog

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mfroeh/gorex/regex/syntax"
)

func mustCompile(t *testing.T, re string, flags syntax.Flags) *Program {
	t.Helper()
	tree, err := syntax.Parse([]byte(re), flags)
	if err != nil {
		t.Fatalf("Parse(%q): %v", re, err)
	}
	p, err := Compile(tree)
	if err != nil {
		t.Fatalf("Compile(%q): %v", re, err)
	}
	return p
}

func TestCompile(t *testing.T) {
	tests := map[string]struct {
		givenRe   string
		wantProg  string
		wantLoops int
	}{
		"alternation and lazy star": {
			givenRe: `a|b*?`,
			wantProg: `
   0  save 0
   1  split 2, 4
   2  char a
   3  jmp 7
   4  split 7, 5
   5  char b
   6  jmp 4
   7  save 1
   8  match
`,
		},
		"guarded loop": {
			givenRe: `(a*)*`,
			wantProg: `
   0  save 0
   1  split 2, 10
   2  mark r0
   3  save 2
   4  split 5, 7
   5  char a
   6  jmp 4
   7  save 3
   8  check r0, 10
   9  jmp 1
  10  save 1
  11  match
`,
			wantLoops: 1,
		},
		"bounded repeat": {
			givenRe: `a{1,3}`,
			wantProg: `
   0  save 0
   1  char a
   2  split 3, 6
   3  char a
   4  split 5, 6
   5  char a
   6  save 1
   7  match
`,
		},
		"lazy bounded repeat": {
			givenRe: `a??`,
			wantProg: `
   0  save 0
   1  split 3, 2
   2  char a
   3  save 1
   4  match
`,
		},
		"assertions": {
			givenRe: `^\bx$`,
			wantProg: `
   0  save 0
   1  assert \A
   2  assert \b
   3  char x
   4  assert \z
   5  save 1
   6  match
`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			p := mustCompile(t, tt.givenRe, 0)

			// then
			if d := cmp.Diff(strings.TrimPrefix(tt.wantProg, "\n"), p.String()); d != "" {
				t.Errorf("diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantLoops, p.NumLoops); d != "" {
				t.Errorf("loops diff (-want +got):\n%s", d)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestCompileLimits(t *testing.T) {
	tests := map[string]string{
		"too many captures": strings.Repeat("(a)", MaxCaptures),
		"too many insts":    `(?:(?:a{1000}){1000}){1000}`,
	}

	for name, re := range tests {
		t.Run(name, func(t *testing.T) {
			tree, err := syntax.Parse([]byte(re), 0)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			// when
			p, err := Compile(tree)

			// then
			var compileErr *CompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("expected a CompileError, got %v, %v", p, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		givenProg *Program
		wantErr   bool
	}{
		"valid": {
			givenProg: &Program{
				Insts:       []Inst{{Op: OpSave, N: 0}, {Op: OpChar, Set: syntax.SingleByte('a')}, {Op: OpSave, N: 1}, {Op: OpMatch}},
				NumCaptures: 1,
			},
		},
		"empty": {
			givenProg: &Program{NumCaptures: 1},
			wantErr:   true,
		},
		"no match": {
			givenProg: &Program{Insts: []Inst{{Op: OpJump, X: 0}}, NumCaptures: 1},
			wantErr:   true,
		},
		"split out of range": {
			givenProg: &Program{Insts: []Inst{{Op: OpSplit, X: 1, Y: 5}, {Op: OpMatch}}, NumCaptures: 1},
			wantErr:   true,
		},
		"char at the end": {
			givenProg: &Program{Insts: []Inst{{Op: OpMatch}, {Op: OpChar}}, NumCaptures: 1},
			wantErr:   true,
		},
		"slot out of range": {
			givenProg: &Program{Insts: []Inst{{Op: OpSave, N: 2}, {Op: OpMatch}}, NumCaptures: 1},
			wantErr:   true,
		},
		"loop register out of range": {
			givenProg: &Program{Insts: []Inst{{Op: OpMark, N: 0}, {Op: OpMatch}}, NumCaptures: 1},
			wantErr:   true,
		},
		"names do not fit": {
			givenProg: &Program{Insts: []Inst{{Op: OpMatch}}, NumCaptures: 1, Names: []string{"", "x"}},
			wantErr:   true,
		},
		"unknown opcode": {
			givenProg: &Program{Insts: []Inst{{Op: 42}, {Op: OpMatch}}, NumCaptures: 1},
			wantErr:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// when
			err := tt.givenProg.Validate()

			// then
			if gotErr := err != nil; gotErr != tt.wantErr {
				t.Errorf("Validate() = %v, want error: %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnalysis(t *testing.T) {
	tests := map[string]struct {
		givenRe      string
		givenFlags   syntax.Flags
		wantAnchored bool
		wantFirst    string
		wantLiterals []string
	}{
		"literal": {
			givenRe:      `abc`,
			wantFirst:    "a",
			wantLiterals: []string{"abc"},
		},
		"anchored": {
			givenRe:      `^ab`,
			wantAnchored: true,
			wantFirst:    "a",
			wantLiterals: []string{"ab"},
		},
		"anchored in every branch": {
			givenRe:      `(^a|\Ab)`,
			wantAnchored: true,
			wantFirst:    "[a-b]",
			wantLiterals: []string{"a", "b"},
		},
		"one branch not anchored": {
			givenRe:      `^a|b`,
			wantFirst:    "[a-b]",
			wantLiterals: []string{"a", "b"},
		},
		"line anchor": {
			givenRe:      `^a`,
			givenFlags:   syntax.Multiline,
			wantFirst:    "a",
			wantLiterals: []string{"a"},
		},
		"literal alternation": {
			givenRe:      `foo|bar|foo`,
			wantFirst:    "[bf]",
			wantLiterals: []string{"foo", "bar"},
		},
		"captures are skipped": {
			givenRe:      `(a)(b)c+`,
			wantFirst:    "a",
			wantLiterals: []string{"abc"},
		},
		"class": {
			givenRe:   `[ab]c`,
			wantFirst: "[a-b]",
		},
		"loop": {
			givenRe:      `a*b`,
			wantFirst:    "[a-b]",
			wantLiterals: []string{"a", "b"},
		},
		"can be empty": {
			givenRe: `a?`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := mustCompile(t, tt.givenRe, tt.givenFlags)

			// when
			gotAnchored := p.AnchoredStart()
			first, ok := p.FirstBytes()
			var gotFirst string
			if ok {
				gotFirst = first.String()
			}
			var gotLiterals []string
			for _, lit := range p.LiteralPrefixes() {
				gotLiterals = append(gotLiterals, string(lit))
			}

			// then
			if d := cmp.Diff(tt.wantAnchored, gotAnchored); d != "" {
				t.Errorf("anchored diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantFirst, gotFirst); d != "" {
				t.Errorf("first bytes diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.wantLiterals, gotLiterals); d != "" {
				t.Errorf("literals diff (-want +got):\n%s", d)
			}
		})
	}
}
