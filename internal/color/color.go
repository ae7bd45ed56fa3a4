// Package color wraps text in ANSI escape sequences for the display sink.
//
//nolint:revive // package name conflicts with standard library
package color

import "github.com/isseis/go-errpromote/internal/errcategory"

// ANSI color codes
const (
	resetCode  = "\033[0m"
	grayCode   = "\033[90m" // Bright black/gray
	yellowCode = "\033[33m"
	redCode    = "\033[31m"
	boldRed    = "\033[1;31m"
	cyanCode   = "\033[36m"
)

// Color wraps text with ANSI escape sequences.
type Color func(text string) string

// NewColor creates a color function with the specified ANSI code.
func NewColor(ansiCode string) Color {
	return func(text string) string {
		return ansiCode + text + resetCode
	}
}

// Plain returns text unchanged.
func Plain(text string) string {
	return text
}

// Predefined color functions
var (
	Gray    = NewColor(grayCode)
	Yellow  = NewColor(yellowCode)
	Red     = NewColor(redCode)
	BoldRed = NewColor(boldRed)
	Cyan    = NewColor(cyanCode)
)

// ForCategory returns the color used for a category's display label:
// bold red for fatal, red for the remaining uncatchable ones, yellow for
// warnings, gray for deprecations and cyan for notices.
func ForCategory(c errcategory.Category) Color {
	switch {
	case c.Fatal():
		return BoldRed
	case !c.Catchable():
		return Red
	}
	switch c {
	case errcategory.Warning, errcategory.UserWarning:
		return Yellow
	case errcategory.Deprecated, errcategory.UserDeprecated, errcategory.Strict:
		return Gray
	default:
		return Cyan
	}
}
