package config

import (
	"errors"
	"fmt"
)

// Configuration loading and validation errors
var (
	// ErrUnsupportedFormat is returned when the file extension is not .toml, .yaml or .yml
	ErrUnsupportedFormat = errors.New("unsupported config file format")

	// ErrInvalidErrorReporting is returned when error_reporting cannot be resolved
	ErrInvalidErrorReporting = errors.New("invalid error_reporting value")

	// ErrNATSSubjectWithoutURL is returned when [nats] sets a subject but no URL
	ErrNATSSubjectWithoutURL = errors.New("nats subject set without url")

	// ErrEmptyScopeFile is returned when a scope has no file
	ErrEmptyScopeFile = errors.New("scope file is empty")

	// ErrDuplicateScope is returned when two scopes name the same file
	ErrDuplicateScope = errors.New("duplicate scope")
)

// ScopeError reports an invalid [[scopes]] entry.
type ScopeError struct {
	Index int
	File  string
	Err   error
}

// Error implements the error interface
func (e *ScopeError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("scopes[%d]: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("scopes[%d] (%s): %v", e.Index, e.File, e.Err)
}

// Unwrap returns the underlying error
func (e *ScopeError) Unwrap() error {
	return e.Err
}
