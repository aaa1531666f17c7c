package regex

import (
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) of the subject. Groups that
// did not take part in the match have the span {-1, -1}.
type Span struct {
	Start int
	End   int
}

var unset = Span{Start: -1, End: -1}

func (s Span) IsSet() bool {
	return s.Start >= 0
}

func (s Span) Len() int {
	if !s.IsSet() {
		return 0
	}
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.IsSet() {
		return "-"
	}
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Region is the result of a successful search: the span of the whole match
// (group 0) followed by the spans of the capture groups. The caller owns it.
type Region struct {
	Groups []Span
}

func newRegion(slots []int) *Region {
	r := &Region{Groups: make([]Span, len(slots)/2)}
	for i := range r.Groups {
		start, end := slots[2*i], slots[2*i+1]
		if start < 0 || end < 0 {
			r.Groups[i] = unset
			continue
		}
		r.Groups[i] = Span{Start: start, End: end}
	}
	return r
}

// NumRegs returns the number of groups including group 0.
func (r *Region) NumRegs() int {
	return len(r.Groups)
}

// Span returns the span of group i, unset if i is out of range.
func (r *Region) Span(i int) Span {
	if i < 0 || i >= len(r.Groups) {
		return unset
	}
	return r.Groups[i]
}

// Beg returns the start offset of group i, or -1.
func (r *Region) Beg(i int) int {
	return r.Span(i).Start
}

// End returns the end offset of group i, or -1.
func (r *Region) End(i int) int {
	return r.Span(i).End
}

// Group returns the bytes of subject matched by group i, or nil if the group
// is unset.
func (r *Region) Group(subject []byte, i int) []byte {
	s := r.Span(i)
	if !s.IsSet() {
		return nil
	}
	return subject[s.Start:s.End]
}

func (r *Region) String() string {
	parts := make([]string, len(r.Groups))
	for i, g := range r.Groups {
		parts[i] = g.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// FreeRegion exists for parity with C regex libraries that allocate regions
// by hand. Regions are garbage collected, so it does nothing.
func FreeRegion(*Region) {}
