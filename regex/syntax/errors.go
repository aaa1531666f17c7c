package syntax

import "fmt"

// SyntaxError reports a malformed pattern. Pos is the byte offset in the
// pattern at which the problem was detected.
type SyntaxError struct {
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Reason)
}

func newSyntaxError(pos int, reason string) *SyntaxError {
	return &SyntaxError{Pos: pos, Reason: reason}
}
