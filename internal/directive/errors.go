// Package directive turns resolved throw_errors directive values into
// promotion masks and keeps the write-once binding of each scope to its mask.
//
// Evaluating the directive's source expression is the job of the host
// compiler; this package receives the already-evaluated value.
package directive

import (
	"errors"
	"fmt"

	"github.com/isseis/go-errpromote/internal/errcategory"
)

// Errors returned by the resolver and the scope table.
var (
	// ErrInvalidType is returned when the directive value is not an integer, a name or a list of names
	ErrInvalidType = errcategory.ErrInvalidType

	// ErrUnknownCategory is returned when the directive names a category that does not exist
	ErrUnknownCategory = errcategory.ErrUnknownName

	// ErrUnknownBit is returned when an integer directive value sets bits outside E_ALL
	ErrUnknownBit = errcategory.ErrUnknownBit

	// ErrNegativeValue is returned when an integer directive value is negative
	ErrNegativeValue = errcategory.ErrNegativeValue

	// ErrAlreadyBound is returned when a scope's mask is bound a second time
	ErrAlreadyBound = errors.New("directive already bound for scope")

	// ErrEmptyScope is returned when binding a mask to an empty scope name
	ErrEmptyScope = errors.New("scope name is empty")
)

// ConfigError reports an invalid directive. It is fatal for the declaring
// scope: callers must abort setting that scope up rather than fall back to a
// default mask.
type ConfigError struct {
	Scope string // Scope the directive was declared in, may be empty
	Value any    // Raw directive value
	Err   error  // Underlying error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("invalid throw_errors directive in %s (value %v): %v", e.Scope, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid throw_errors directive (value %v): %v", e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Err
}
