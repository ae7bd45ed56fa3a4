package redaction

import "fmt"

// ErrRegexCompilationFailed is returned when a redaction pattern does not compile
type ErrRegexCompilationFailed struct {
	Pattern string
	Err     error
}

func (e *ErrRegexCompilationFailed) Error() string {
	return fmt.Sprintf("failed to compile regex pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error
func (e *ErrRegexCompilationFailed) Unwrap() error {
	return e.Err
}
