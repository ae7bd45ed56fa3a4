package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrorType classifies failures that happen before any event is replayed.
type ErrorType string

const (
	// ErrorTypeRequiredArgumentMissing represents a missing command line argument
	ErrorTypeRequiredArgumentMissing ErrorType = "required_argument_missing"
	// ErrorTypeInvalidArgument represents a command line argument with an unusable value
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeConfigParsing represents configuration loading or validation failures
	ErrorTypeConfigParsing ErrorType = "config_parsing_failed"
	// ErrorTypeLogFileOpen represents log file opening failures
	ErrorTypeLogFileOpen ErrorType = "log_file_open_failed"
	// ErrorTypeFileAccess represents failures opening the events file
	ErrorTypeFileAccess ErrorType = "file_access_failed"
	// ErrorTypeSinkSetup represents failures creating a reporting sink
	ErrorTypeSinkSetup ErrorType = "sink_setup_failed"
)

// PreExecutionError is a failure that stops errpromote before replay starts.
type PreExecutionError struct {
	Type      ErrorType
	Message   string
	Component string
	RunID     string
	Err       error
}

// Error implements the error interface
func (e *PreExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v (component: %s, run_id: %s)", e.Type, e.Message, e.Err, e.Component, e.RunID)
	}
	return fmt.Sprintf("%s: %s (component: %s, run_id: %s)", e.Type, e.Message, e.Component, e.RunID)
}

// Unwrap returns the underlying error
func (e *PreExecutionError) Unwrap() error {
	return e.Err
}

// HandlePreExecutionError writes a human readable summary of err to w and
// logs it through the default logger.
func HandlePreExecutionError(w io.Writer, err *PreExecutionError) {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", err.Type)
	if err.Component != "" {
		fmt.Fprintf(&b, "  Component: %s\n", err.Component)
	}
	details := err.Message
	if err.Err != nil {
		details = fmt.Sprintf("%s: %v", err.Message, err.Err)
	}
	fmt.Fprintf(&b, "  Details: %s\n", details)
	if err.RunID != "" {
		fmt.Fprintf(&b, "  Run ID: %s\n", err.RunID)
	}
	// Single write keeps the block together
	_, _ = io.WriteString(w, b.String())

	slog.Error("Pre-execution error occurred",
		"error_type", string(err.Type),
		"error_message", details,
		"component", err.Component,
		"run_id", err.RunID,
	)
}
