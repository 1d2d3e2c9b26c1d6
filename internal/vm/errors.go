package vm

import "fmt"

// FatalError represents one of the "programming error in the script"
// conditions from spec §7: stack underflow, type mismatch on a typed pop,
// unknown word, or unbalanced quote/definition syntax. The interpreter
// never recovers from one internally — it returns up through Interp.Run
// to the caller, which is expected to report it and terminate, mirroring
// jcorbin-gothird's haltError / panicerr pattern of a typed halting error
// that unwinds to the outermost driver.
type FatalError struct {
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s", e.Reason)
}

func fatalf(format string, args ...interface{}) error {
	return &FatalError{Reason: fmt.Sprintf(format, args...)}
}

// Fatalf builds a FatalError for use by other packages (internal/uv's
// primitives) that need to fail the interpreter the same way a stack
// underflow or unknown word does.
func Fatalf(format string, args ...interface{}) error {
	return fatalf(format, args...)
}
