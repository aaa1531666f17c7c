package prog

// CompileError reports that a syntax tree could not be turned into a program,
// usually because an internal limit was exceeded.
type CompileError struct {
	Reason string
}

func (e *CompileError) Error() string {
	return "compile error: " + e.Reason
}
