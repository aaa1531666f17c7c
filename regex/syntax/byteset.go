package syntax

import (
	"fmt"
	"math/bits"
	"strings"
)

// ByteSet is a set of byte values, one bit per byte.
// The zero value is the empty set.
type ByteSet [4]uint64

func SingleByte(c byte) ByteSet {
	var s ByteSet
	s.Add(c)
	return s
}

func RangeSet(from, to byte) ByteSet {
	var s ByteSet
	s.AddRange(from, to)
	return s
}

func (s *ByteSet) Add(c byte) {
	s[c>>6] |= 1 << (c & 63)
}

func (s *ByteSet) AddRange(from, to byte) {
	for c := int(from); c <= int(to); c++ {
		s.Add(byte(c))
	}
}

func (s *ByteSet) AddSet(o ByteSet) {
	for i := range s {
		s[i] |= o[i]
	}
}

func (s ByteSet) Has(c byte) bool {
	return s[c>>6]&(1<<(c&63)) != 0
}

func (s ByteSet) Negate() ByteSet {
	return ByteSet{^s[0], ^s[1], ^s[2], ^s[3]}
}

func (s ByteSet) Len() int {
	return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1]) +
		bits.OnesCount64(s[2]) + bits.OnesCount64(s[3])
}

func (s ByteSet) IsEmpty() bool {
	return s == ByteSet{}
}

// Single returns the only member of s, if s has exactly one.
func (s ByteSet) Single() (byte, bool) {
	if s.Len() != 1 {
		return 0, false
	}
	for i, w := range s {
		if w != 0 {
			return byte(i*64 + bits.TrailingZeros64(w)), true
		}
	}
	return 0, false
}

// FoldASCII adds the other case of every ASCII letter in s.
func (s ByteSet) FoldASCII() ByteSet {
	out := s
	for c := 'a'; c <= 'z'; c++ {
		upper := byte(c - 'a' + 'A')
		if s.Has(byte(c)) {
			out.Add(upper)
		}
		if s.Has(upper) {
			out.Add(byte(c))
		}
	}
	return out
}

// String renders s as a bracket expression, e.g. "[0-9a-f]".
func (s ByteSet) String() string {
	if c, ok := s.Single(); ok {
		return quoteByte(c, `\.+*?()|[]{}^$`)
	}
	if s.Len() > 128 {
		return "[^" + s.Negate().ranges() + "]"
	}
	return "[" + s.ranges() + "]"
}

func (s ByteSet) ranges() string {
	var b strings.Builder
	for c := 0; c < 256; c++ {
		if !s.Has(byte(c)) {
			continue
		}
		start := c
		for c+1 < 256 && s.Has(byte(c+1)) {
			c++
		}
		b.WriteString(quoteByte(byte(start), classMeta))
		if c > start {
			b.WriteByte('-')
			b.WriteString(quoteByte(byte(c), classMeta))
		}
	}
	return b.String()
}

const classMeta = `\-[]^`

func quoteByte(c byte, meta string) string {
	if c >= 0x21 && c <= 0x7e {
		if strings.IndexByte(meta, c) >= 0 {
			return `\` + string(c)
		}
		return string(c)
	}
	return fmt.Sprintf(`\x%02x`, c)
}
