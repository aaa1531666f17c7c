package vm

import "github.com/mfroeh/gorex/regex/syntax"

// Assert reports whether the zero-width assertion k holds at offset i of input.
func Assert(k syntax.AnchorKind, input []byte, i int) bool {
	switch k {
	case syntax.BeginText:
		return i == 0
	case syntax.EndText:
		return i == len(input)
	case syntax.BeginLine:
		return i == 0 || input[i-1] == '\n'
	case syntax.EndLine:
		return i == len(input) || input[i] == '\n'
	case syntax.WordBoundary:
		return wordAt(input, i-1) != wordAt(input, i)
	case syntax.NoWordBoundary:
		return wordAt(input, i-1) == wordAt(input, i)
	}
	return false
}

func wordAt(input []byte, i int) bool {
	return i >= 0 && i < len(input) && syntax.IsWordByte(input[i])
}
