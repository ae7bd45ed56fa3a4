package reporting

import (
	"errors"
	"fmt"

	"github.com/isseis/go-errpromote/internal/promotion"
)

// Error definitions
var (
	// ErrNilSink is returned when a nil sink is configured
	ErrNilSink = errors.New("sink cannot be nil")

	// ErrNilPublisher is returned when a NATS sink has no publisher
	ErrNilPublisher = errors.New("publisher cannot be nil")

	// ErrEmptySubject is returned when a NATS sink has no subject
	ErrEmptySubject = errors.New("subject cannot be empty")

	// ErrEmptyPath is returned when a file sink has no path
	ErrEmptyPath = errors.New("error_log path cannot be empty")

	// ErrTerminated matches every *TerminationError with errors.Is
	ErrTerminated = errors.New("execution terminated by fatal error")
)

// TerminationError is returned by the legacy path when a fatal error ends
// execution.
type TerminationError struct {
	Event promotion.Event
}

// Error implements the error interface
func (e *TerminationError) Error() string {
	return fmt.Sprintf("%s: %s in %s on line %d", e.Event.Category.Label(), e.Event.Message, e.Event.File, e.Event.Line)
}

// Is lets errors.Is(err, ErrTerminated) match
func (e *TerminationError) Is(target error) bool {
	return target == ErrTerminated
}

// SinkError reports a sink that failed to write a report
type SinkError struct {
	Sink string
	Err  error
}

// Error implements the error interface
func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

// Unwrap returns the underlying error
func (e *SinkError) Unwrap() error {
	return e.Err
}
