package regex

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSearch(t *testing.T) {
	tests := map[string]struct {
		givenRe      string
		givenOpts    Options
		givenSubject string
		wantGroups   []Span
	}{
		"greedy star takes everything": {
			givenRe:      `a*`,
			givenSubject: "aaa",
			wantGroups:   []Span{{0, 3}},
		},
		"non-greedy star takes nothing": {
			givenRe:      `a*?`,
			givenSubject: "aaa",
			wantGroups:   []Span{{0, 0}},
		},
		"first alternative wins": {
			givenRe:      `a|ab`,
			givenSubject: "ab",
			wantGroups:   []Span{{0, 1}},
		},
		"empty loop body terminates": {
			givenRe:      `(a?)*`,
			givenSubject: "",
			wantGroups:   []Span{{0, 0}, {0, 0}},
		},
		"nested empty loops terminate": {
			// the final, empty iterations still record their captures
			givenRe:      `((a*)*)*b`,
			givenSubject: "aab",
			wantGroups:   []Span{{0, 3}, {2, 2}, {2, 2}},
		},
		"onig demo": {
			givenRe:      `a(.*)b|[e-f]+`,
			givenSubject: "zzzzaffffffffb",
			wantGroups:   []Span{{4, 14}, {5, 13}},
		},
		"second alternative of onig demo": {
			givenRe:      `a(.*)b|[e-f]+`,
			givenSubject: "zzeffz",
			wantGroups:   []Span{{2, 5}, unset},
		},
		"empty match at end of input": {
			givenRe:      `x*$`,
			givenSubject: "ab",
			wantGroups:   []Span{{2, 2}},
		},
		"unset group": {
			givenRe:      `(a)|(b)`,
			givenSubject: "b",
			wantGroups:   []Span{{0, 1}, unset, {0, 1}},
		},
		"capture keeps last iteration": {
			givenRe:      `(?:(a)|b)+`,
			givenSubject: "ab",
			wantGroups:   []Span{{0, 2}, {0, 1}},
		},
		"backtracking unsets speculative captures": {
			givenRe:      `(?:(a)x|ay)`,
			givenSubject: "ay",
			wantGroups:   []Span{{0, 2}, unset},
		},
		"anchored": {
			givenRe:      `^ab`,
			givenSubject: "cab",
			wantGroups:   nil,
		},
		"multiline anchors": {
			givenRe:      `^b$`,
			givenOpts:    Options{Multiline: true},
			givenSubject: "a\nb\nc",
			wantGroups:   []Span{{2, 3}},
		},
		"ignore case": {
			givenRe:      `hello [a-c]+`,
			givenOpts:    Options{IgnoreCase: true},
			givenSubject: "say HeLLo AbC",
			wantGroups:   []Span{{4, 13}},
		},
		"literal alternation": {
			givenRe:      `foo(bar)|baz|qux`,
			givenSubject: "xxquxfoobar",
			wantGroups:   []Span{{2, 5}, unset},
		},
		"long literal": {
			givenRe:      `needle(s?)`,
			givenSubject: "haystack with needles",
			wantGroups:   []Span{{14, 21}, {20, 21}},
		},
		"no match": {
			givenRe:      `[0-9]+`,
			givenSubject: "no digits here",
			wantGroups:   nil,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re, err := CompileWith(tt.givenRe, tt.givenOpts)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}

			// when
			gotRegion, gotErr := re.Search([]byte(tt.givenSubject))

			// then
			if gotErr != nil {
				t.Fatalf("Search: %v", gotErr)
			}
			var gotGroups []Span
			if gotRegion != nil {
				gotGroups = gotRegion.Groups
			}
			if d := cmp.Diff(tt.wantGroups, gotGroups); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestOnigDemoRoundTrip(t *testing.T) {
	re, err := Compile(`a(.*)b|[e-f]+`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	subject := []byte("zzzzaffffffffb")

	region, err := re.Search(subject)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	defer FreeRegion(region)

	if region == nil {
		t.Fatal("expected a match")
	}
	if d := cmp.Diff(2, region.NumRegs()); d != "" {
		t.Errorf("NumRegs diff (-want +got):\n%s", d)
	}
	if d := cmp.Diff("ffffffff", string(region.Group(subject, 1))); d != "" {
		t.Errorf("group 1 diff (-want +got):\n%s", d)
	}
	if d := cmp.Diff("{[4,14) [5,13)}", region.String()); d != "" {
		t.Errorf("String diff (-want +got):\n%s", d)
	}
}

func TestSearchProperties(t *testing.T) {
	patterns := []string{
		`a*`, `a*?`, `(a|ab)(c|bcd)(d*)`, `(a?)*`, `x(y(z)?)+`, `\bw\w*`,
		`[^ ]+ (\d+)?`, `(?:(a)|(b)|(c))*c`, `.{2,3}?x`, `$`, `^`,
	}
	subjects := []string{
		"", "a", "aaa", "abcd", "xyzyzyz", "we want 42 words", "abcabc", "zzzx",
	}

	for _, pattern := range patterns {
		first, err := Compile(pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", pattern, err)
		}
		second, err := Compile(pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", pattern, err)
		}
		if d := cmp.Diff(first.Program(), second.Program()); d != "" {
			t.Errorf("%q compiled differently (-first +second):\n%s", pattern, d)
		}

		for _, subject := range subjects {
			in := []byte(subject)
			r1, err1 := first.Search(in)
			r2, err2 := first.Search(in)
			r3, err3 := second.Search(in)
			if err1 != nil || err2 != nil || err3 != nil {
				t.Fatalf("%q on %q: unexpected errors %v %v %v", pattern, subject, err1, err2, err3)
			}
			if d := cmp.Diff(r1, r2); d != "" {
				t.Errorf("%q on %q is not deterministic (-first +second):\n%s", pattern, subject, d)
			}
			if d := cmp.Diff(r1, r3); d != "" {
				t.Errorf("%q on %q differs between compilations (-first +second):\n%s", pattern, subject, d)
			}
			if r1 == nil {
				continue
			}

			whole := r1.Groups[0]
			if whole.Start < 0 || whole.Start > whole.End || whole.End > len(in) {
				t.Errorf("%q on %q: overall span %v out of bounds", pattern, subject, whole)
			}
			for i, g := range r1.Groups[1:] {
				if !g.IsSet() {
					if g != unset {
						t.Errorf("%q on %q: group %d half set: %v", pattern, subject, i+1, g)
					}
					continue
				}
				if g.Start > g.End || g.Start < whole.Start || g.End > whole.End {
					t.Errorf("%q on %q: group %d span %v outside of %v", pattern, subject, i+1, g, whole)
				}
			}
		}
	}
}

func TestSearchAt(t *testing.T) {
	tests := map[string]struct {
		givenRe    string
		givenStart int
		wantSpan   Span
	}{
		"skips earlier match": {
			givenRe:    `b+`,
			givenStart: 3,
			wantSpan:   Span{4, 6},
		},
		"assertions see bytes before start": {
			givenRe:    `\bb`,
			givenStart: 2,
			wantSpan:   Span{4, 5},
		},
		"anchored pattern after start": {
			givenRe:    `^a`,
			givenStart: 1,
			wantSpan:   unset,
		},
		"start past the end": {
			givenRe:    `a*`,
			givenStart: 100,
			wantSpan:   unset,
		},
		"empty match at end": {
			givenRe:    `c*`,
			givenStart: 6,
			wantSpan:   Span{6, 6},
		},
	}

	subject := []byte("abb bb")
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re := MustCompile(tt.givenRe)

			// when
			region, err := re.SearchAt(subject, tt.givenStart)

			// then
			if err != nil {
				t.Fatalf("SearchAt: %v", err)
			}
			gotSpan := unset
			if region != nil {
				gotSpan = region.Span(0)
			}
			if d := cmp.Diff(tt.wantSpan, gotSpan); d != "" {
				t.Errorf("got diff (-want +got):\n%s", d)
			}
		})
	}
}

func TestStepLimit(t *testing.T) {
	subject := []byte(strings.Repeat("a", 30))

	re, err := CompileWith(`(a*)*b`, Options{StepLimit: 10000})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	region, err := re.Search(subject)
	if !errors.Is(err, ErrStepLimitExceeded) {
		t.Fatalf("expected ErrStepLimitExceeded, got region %v and error %v", region, err)
	}

	// the limit applies per search, the next one starts from zero again
	region, err = re.Search([]byte("ab"))
	if err != nil || region == nil {
		t.Fatalf("expected a match after a failed search, got %v, %v", region, err)
	}
}

func TestStepLimitLargeInput(t *testing.T) {
	subject := bytes.Repeat([]byte("y"), 8<<20)

	tests := map[string]struct {
		givenRe   string
		givenOpts Options
	}{
		"any byte then literal": {givenRe: `.x`},
		"class then literal":    {givenRe: `[a-z]z`},
		"alternation":           {givenRe: `ab|cd|yx`},
		"explicit small limit":  {givenRe: `.x`, givenOpts: Options{StepLimit: 1000}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re, err := CompileWith(tt.givenRe, tt.givenOpts)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}

			// when
			region, err := re.Search(subject)

			// then
			if err != nil {
				t.Fatalf("expected no error for a linear scan, got %v", err)
			}
			if region != nil {
				t.Errorf("expected no match, got %v", region)
			}
		})
	}
}

func TestSearchContext(t *testing.T) {
	re, err := CompileWith(`(a*)*b`, Options{StepLimit: -1})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = re.SearchContext(ctx, []byte(strings.Repeat("a", 40)))

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected the context error to be wrapped, got %v", err)
	}
}

func TestConcurrentSearch(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)\.com`)
	subject := []byte("mail alice@example.com now")
	want, err := re.Search(subject)
	if err != nil || want == nil {
		t.Fatalf("Search: %v, %v", want, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := re.Search(subject)
				if err != nil {
					t.Errorf("Search: %v", err)
					return
				}
				if d := cmp.Diff(want, got); d != "" {
					t.Errorf("got diff (-want +got):\n%s", d)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMatch(t *testing.T) {
	tests := map[string]struct {
		givenRe      string
		givenSubject string
		want         bool
	}{
		"match in the middle": {givenRe: `b+`, givenSubject: "abbc", want: true},
		"no match":            {givenRe: `x`, givenSubject: "abc", want: false},
		"empty pattern":       {givenRe: ``, givenSubject: "", want: true},
		"anchored mismatch":   {givenRe: `^b`, givenSubject: "ab", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			re := MustCompile(tt.givenRe)

			// when
			gotBytes := re.Match([]byte(tt.givenSubject))
			gotString := re.MatchString(tt.givenSubject)

			// then
			if d := cmp.Diff(tt.want, gotBytes); d != "" {
				t.Errorf("Match diff (-want +got):\n%s", d)
			}
			if d := cmp.Diff(tt.want, gotString); d != "" {
				t.Errorf("MatchString diff (-want +got):\n%s", d)
			}
		})
	}
}
