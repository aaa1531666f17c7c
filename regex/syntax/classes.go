package syntax

var (
	digitSet = RangeSet('0', '9')
	wordSet  = setOf(RangeSet('a', 'z'), RangeSet('A', 'Z'), digitSet, SingleByte('_'))
	spaceSet = setOf(SingleByte(' '), SingleByte('\t'), SingleByte('\r'), SingleByte('\n'), SingleByte('\v'), SingleByte('\f'))
	// dot matches every byte except newline
	dotSet = SingleByte('\n').Negate()
)

var posixClasses = map[string]ByteSet{
	"alnum":  setOf(RangeSet('a', 'z'), RangeSet('A', 'Z'), digitSet),
	"alpha":  setOf(RangeSet('a', 'z'), RangeSet('A', 'Z')),
	"ascii":  RangeSet(0x00, 0x7f),
	"blank":  setOf(SingleByte(' '), SingleByte('\t')),
	"cntrl":  setOf(RangeSet(0x00, 0x1f), SingleByte(0x7f)),
	"digit":  digitSet,
	"graph":  RangeSet(0x21, 0x7e),
	"lower":  RangeSet('a', 'z'),
	"print":  RangeSet(0x20, 0x7e),
	"punct":  setOf(RangeSet('!', '/'), RangeSet(':', '@'), RangeSet('[', '`'), RangeSet('{', '~')),
	"space":  spaceSet,
	"upper":  RangeSet('A', 'Z'),
	"word":   wordSet,
	"xdigit": setOf(RangeSet('A', 'F'), RangeSet('a', 'f'), digitSet),
}

// perlClass returns the set for the escape \c, with c one of dDwWsS.
func perlClass(c byte) (ByteSet, bool) {
	switch c {
	case 'd':
		return digitSet, true
	case 'D':
		return digitSet.Negate(), true
	case 'w':
		return wordSet, true
	case 'W':
		return wordSet.Negate(), true
	case 's':
		return spaceSet, true
	case 'S':
		return spaceSet.Negate(), true
	}
	return ByteSet{}, false
}

// escapedByte returns the byte for a C-style escape sequence such as \t or \n.
// https://en.wikipedia.org/wiki/Escape_sequences_in_C
func escapedByte(c byte) (byte, bool) {
	switch c {
	case 'a':
		return '\a', true
	case 'e':
		return 0x1b, true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	}
	return 0, false
}

func setOf(sets ...ByteSet) ByteSet {
	var out ByteSet
	for _, s := range sets {
		out.AddSet(s)
	}
	return out
}

// IsWordByte reports whether c belongs to \w.
func IsWordByte(c byte) bool {
	return wordSet.Has(c)
}
