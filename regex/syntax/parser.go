package syntax

import (
	"slices"
	"strconv"
)

// MaxRepeat is the largest count accepted in a {m,n} interval.
const MaxRepeat = 1000

type parser struct {
	src   []byte
	pos   int
	flags Flags
	depth int
	names []string
}

// Parse turns pattern into a syntax tree.
//
// Grammar, from lowest to highest precedence:
//
//	alternate = concat { "|" concat }
//	concat    = { repeat }
//	repeat    = atom [ ( "*" | "+" | "?" | "{m}" | "{m,}" | "{m,n}" ) [ "?" ] ]
//	atom      = byte | "." | "^" | "$" | escape | class | "(" [ "?:" | "?<name>" ] alternate ")"
//
// A ']' directly after '[' or '[^' is a member of the class, not its end.
func Parse(pattern []byte, flags Flags) (*Tree, error) {
	p := &parser{src: pattern, flags: flags, names: []string{""}}
	root, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, NumCaptures: len(p.names), Names: p.names}, nil
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

// ...|...|...
func (p *parser) parseAlternate() (*Node, error) {
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if p.eof() || p.peek() != '|' {
		return first, nil
	}

	branches := []*Node{first}
	for !p.eof() && p.peek() == '|' {
		// pop off '|'
		p.pos++
		branch, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return &Node{Op: OpAlternate, Subs: branches}, nil
}

func (p *parser) parseConcat() (*Node, error) {
	var items []*Node
	for !p.eof() {
		c := p.peek()
		if c == '|' {
			break
		}
		if c == ')' {
			if p.depth == 0 {
				return nil, newSyntaxError(p.pos, "unmatched ')'")
			}
			break
		}
		item, err := p.parseRepeat()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	switch len(items) {
	case 0:
		return &Node{Op: OpEmpty}, nil
	case 1:
		return items[0], nil
	}
	return &Node{Op: OpConcat, Subs: items}, nil
}

func (p *parser) parseRepeat() (*Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	start := p.pos
	mi, ma, ok, err := p.parseQuantifier()
	if err != nil || !ok {
		return atom, err
	}

	greedy := true
	if !p.eof() && p.peek() == '?' {
		greedy = false
		p.pos++
	}

	// a**, a+{2} and friends
	next := p.pos
	if _, _, again, err := p.parseQuantifier(); again || err != nil {
		return nil, newSyntaxError(next, "nested repetition operator")
	}
	p.pos = next

	if atom.Op == OpAnchor {
		return nil, newSyntaxError(start, "target of repeat operator is invalid")
	}
	return &Node{Op: OpRepeat, Subs: []*Node{atom}, Min: mi, Max: ma, Greedy: greedy}, nil
}

// {m,n} and ? and * and +
// Returns ok == false and leaves the position alone if there is no quantifier.
func (p *parser) parseQuantifier() (mi int, ma int, ok bool, err error) {
	if p.eof() {
		return 1, 1, false, nil
	}

	switch p.peek() {
	case '+':
		p.pos++
		return 1, Unbounded, true, nil
	case '?':
		p.pos++
		return 0, 1, true, nil
	case '*':
		p.pos++
		return 0, Unbounded, true, nil
	case '{':
		return p.parseInterval()
	}
	return 1, 1, false, nil
}

// parseInterval parses {m}, {m,} or {m,n}. A '{' that does not start a
// well-formed interval is not a quantifier and is later read as a literal.
func (p *parser) parseInterval() (mi int, ma int, ok bool, err error) {
	start := p.pos
	i := start + 1

	readNum := func() (int, bool) {
		j := i
		for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
			i++
		}
		if i == j {
			return 0, false
		}
		n, convErr := strconv.Atoi(string(p.src[j:i]))
		if convErr != nil || n > MaxRepeat {
			// caught below as out of range
			return MaxRepeat + 1, true
		}
		return n, true
	}

	mi, ok = readNum()
	if !ok || i >= len(p.src) {
		return 1, 1, false, nil
	}

	ma = mi
	if p.src[i] == ',' {
		i++
		if i < len(p.src) && p.src[i] == '}' {
			ma = Unbounded
		} else if ma, ok = readNum(); !ok {
			return 1, 1, false, nil
		}
	}
	if i >= len(p.src) || p.src[i] != '}' {
		return 1, 1, false, nil
	}

	if mi > MaxRepeat || ma > MaxRepeat {
		return 0, 0, false, newSyntaxError(start, "repetition count too large")
	}
	if ma != Unbounded && mi > ma {
		return 0, 0, false, newSyntaxError(start, "invalid repetition bounds: min is larger than max")
	}
	p.pos = i + 1
	return mi, ma, true, nil
}

func (p *parser) parseAtom() (*Node, error) {
	c := p.peek()
	switch c {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '.':
		p.pos++
		return &Node{Op: OpLiteral, Set: dotSet}, nil
	case '^':
		p.pos++
		if p.flags&Multiline != 0 {
			return &Node{Op: OpAnchor, Anchor: BeginLine}, nil
		}
		return &Node{Op: OpAnchor, Anchor: BeginText}, nil
	case '$':
		p.pos++
		if p.flags&Multiline != 0 {
			return &Node{Op: OpAnchor, Anchor: EndLine}, nil
		}
		return &Node{Op: OpAnchor, Anchor: EndText}, nil
	case '\\':
		return p.parseEscape()
	case '*', '+', '?':
		return nil, newSyntaxError(p.pos, "target of repeat operator is not specified")
	case '{':
		save := p.pos
		if _, _, ok, err := p.parseInterval(); ok || err != nil {
			return nil, newSyntaxError(save, "target of repeat operator is not specified")
		}
		p.pos = save
	}

	p.pos++
	return p.literal(c), nil
}

func (p *parser) literal(c byte) *Node {
	set := SingleByte(c)
	if p.flags&FoldCase != 0 {
		set = set.FoldASCII()
	}
	return &Node{Op: OpLiteral, Set: set}
}

// (...), (?:...), (?<name>...) and (?P<name>...)
func (p *parser) parseGroup() (*Node, error) {
	open := p.pos
	// pop off '('
	p.pos++

	capture, name := true, ""
	if !p.eof() && p.peek() == '?' {
		var err error
		if capture, name, err = p.parseGroupOptions(open); err != nil {
			return nil, err
		}
	}

	index := -1
	if capture {
		if name != "" && slices.Contains(p.names, name) {
			return nil, newSyntaxError(open, "duplicate group name "+strconv.Quote(name))
		}
		index = len(p.names)
		p.names = append(p.names, name)
	}

	p.depth++
	body, err := p.parseAlternate()
	p.depth--
	if err != nil {
		return nil, err
	}

	if p.eof() {
		return nil, newSyntaxError(open, "missing closing ')'")
	}
	// pop off ')'
	p.pos++

	return &Node{Op: OpGroup, Subs: []*Node{body}, Cap: index, Name: name}, nil
}

// parseGroupOptions handles the text after "(?". It reports whether the group
// captures and its name.
func (p *parser) parseGroupOptions(open int) (bool, string, error) {
	rest := p.src[p.pos:]
	switch {
	case len(rest) >= 2 && rest[1] == ':':
		p.pos += 2
		return false, "", nil
	case len(rest) >= 2 && rest[1] == '<':
		p.pos += 2
	case len(rest) >= 3 && rest[1] == 'P' && rest[2] == '<':
		p.pos += 3
	default:
		return false, "", newSyntaxError(open, "undefined group option")
	}

	start := p.pos
	for !p.eof() && p.peek() != '>' {
		if !IsWordByte(p.peek()) {
			return false, "", newSyntaxError(p.pos, "invalid group name")
		}
		p.pos++
	}
	if p.eof() {
		return false, "", newSyntaxError(open, "missing '>' after group name")
	}
	if p.pos == start {
		return false, "", newSyntaxError(start, "empty group name")
	}
	name := string(p.src[start:p.pos])
	// pop off '>'
	p.pos++
	return true, name, nil
}

func (p *parser) parseEscape() (*Node, error) {
	start := p.pos
	if p.pos+1 >= len(p.src) {
		return nil, newSyntaxError(start, "trailing backslash at end of pattern")
	}
	c := p.src[p.pos+1]
	p.pos += 2

	switch c {
	case 'A':
		return &Node{Op: OpAnchor, Anchor: BeginText}, nil
	case 'z':
		return &Node{Op: OpAnchor, Anchor: EndText}, nil
	case 'b':
		return &Node{Op: OpAnchor, Anchor: WordBoundary}, nil
	case 'B':
		return &Node{Op: OpAnchor, Anchor: NoWordBoundary}, nil
	}

	if set, ok := perlClass(c); ok {
		return &Node{Op: OpLiteral, Set: set}, nil
	}

	b, err := p.escapedLiteral(start, c)
	if err != nil {
		return nil, err
	}
	return p.literal(b), nil
}

// escapedLiteral resolves the escape \c whose backslash is at start. The
// position is just past c on entry; \x consumes its digits.
func (p *parser) escapedLiteral(start int, c byte) (byte, error) {
	if b, ok := escapedByte(c); ok {
		return b, nil
	}
	if c == 'x' {
		return p.parseHex(start)
	}
	if IsWordByte(c) {
		return 0, newSyntaxError(start, "invalid escape sequence \\"+string(c))
	}
	return c, nil
}

// \xHH or \x{H} / \x{HH}
func (p *parser) parseHex(start int) (byte, error) {
	rest := p.src[p.pos:]
	var digits []byte
	switch {
	case len(rest) > 0 && rest[0] == '{':
		end := 1
		for end < len(rest) && rest[end] != '}' {
			end++
		}
		if end >= len(rest) {
			return 0, newSyntaxError(start, "missing '}' in hex escape")
		}
		digits = rest[1:end]
		p.pos += end + 1
	case len(rest) >= 2:
		digits = rest[:2]
		p.pos += 2
	default:
		return 0, newSyntaxError(start, "invalid hex escape")
	}

	v, err := strconv.ParseUint(string(digits), 16, 8)
	if err != nil || len(digits) == 0 {
		return 0, newSyntaxError(start, "invalid hex escape")
	}
	return byte(v), nil
}

// [...] and [^...]
// '\' always escapes inside of a bracket expression, so perl classes can be
// used in it. '-' is literal at the start and at the end.
func (p *parser) parseClass() (*Node, error) {
	open := p.pos
	// pop off '['
	p.pos++

	negate := false
	if !p.eof() && p.peek() == '^' {
		negate = true
		p.pos++
	}

	var set ByteSet
	first := true
	for {
		if p.eof() {
			return nil, newSyntaxError(open, "missing closing ']'")
		}
		if p.peek() == ']' && !first {
			break
		}
		first = false

		lo, loSet, isSet, err := p.parseClassItem()
		if err != nil {
			return nil, err
		}
		if isSet {
			set.AddSet(loSet)
			continue
		}

		// a range, unless '-' is the last byte of the class
		if p.pos+1 < len(p.src) && p.peek() == '-' && p.src[p.pos+1] != ']' {
			dash := p.pos
			p.pos++
			hi, _, hiIsSet, err := p.parseClassItem()
			if err != nil {
				return nil, err
			}
			if hiIsSet {
				return nil, newSyntaxError(dash, "invalid character class range")
			}
			if lo > hi {
				return nil, newSyntaxError(dash, "invalid character class range: "+string([]byte{lo, '-', hi}))
			}
			set.AddRange(lo, hi)
			continue
		}
		set.Add(lo)
	}
	// pop off ']'
	p.pos++

	if p.flags&FoldCase != 0 {
		set = set.FoldASCII()
	}
	if negate {
		set = set.Negate()
	}
	return &Node{Op: OpLiteral, Set: set}, nil
}

// parseClassItem reads one member of a bracket expression: either a single
// byte or a whole set ([:alpha:], \d, ...).
func (p *parser) parseClassItem() (byte, ByteSet, bool, error) {
	start := p.pos
	c := p.peek()

	if c == '[' && p.pos+1 < len(p.src) && p.src[p.pos+1] == ':' {
		set, err := p.parsePosixClass()
		return 0, set, true, err
	}

	if c != '\\' {
		p.pos++
		return c, ByteSet{}, false, nil
	}

	if p.pos+1 >= len(p.src) {
		return 0, ByteSet{}, false, newSyntaxError(start, "missing closing ']'")
	}
	e := p.src[p.pos+1]
	p.pos += 2
	if set, ok := perlClass(e); ok {
		return 0, set, true, nil
	}
	if e == 'b' {
		// backspace, as in C
		return '\b', ByteSet{}, false, nil
	}
	b, err := p.escapedLiteral(start, e)
	return b, ByteSet{}, false, err
}

// [:name:] and [:^name:]
func (p *parser) parsePosixClass() (ByteSet, error) {
	start := p.pos
	i := p.pos + 2
	for i+1 < len(p.src) && !(p.src[i] == ':' && p.src[i+1] == ']') {
		i++
	}
	if i+1 >= len(p.src) {
		return ByteSet{}, newSyntaxError(start, "invalid POSIX character class")
	}

	name := string(p.src[p.pos+2 : i])
	negate := false
	if len(name) > 0 && name[0] == '^' {
		negate = true
		name = name[1:]
	}
	set, ok := posixClasses[name]
	if !ok {
		return ByteSet{}, newSyntaxError(start, "invalid POSIX character class [:"+name+":]")
	}
	p.pos = i + 2
	if negate {
		return set.Negate(), nil
	}
	return set, nil
}
