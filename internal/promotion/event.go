package promotion

import (
	"fmt"

	"github.com/isseis/go-errpromote/internal/errcategory"
)

// Event is a single raised runtime error.
type Event struct {
	Category errcategory.Category
	Message  string
	File     string
	Line     int

	// InRuntimeContext is false for errors raised outside program execution,
	// for example while a directive value is being resolved.
	InRuntimeContext bool
}

// Location returns "file:line".
func (e Event) Location() string {
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// PromotedException is the exception value produced when an event is
// promoted. It carries the original event data unchanged.
type PromotedException struct {
	Message  string
	Category errcategory.Category
	File     string
	Line     int

	// ID is assigned by the dispatcher when the exception is raised and
	// matches the exception_id in its log record. Empty for bare decisions.
	ID string
}

func newPromotedException(e Event) *PromotedException {
	return &PromotedException{
		Message:  e.Message,
		Category: e.Category,
		File:     e.File,
		Line:     e.Line,
	}
}

// Error implements the error interface.
func (e *PromotedException) Error() string {
	return fmt.Sprintf("%s: %s in %s on line %d", e.Category.Label(), e.Message, e.File, e.Line)
}

// Is matches another *PromotedException of the same category, so callers can
// write errors.Is(err, &PromotedException{Category: errcategory.Warning}).
func (e *PromotedException) Is(target error) bool {
	t, ok := target.(*PromotedException)
	if !ok {
		return false
	}
	return t.Category == e.Category
}
