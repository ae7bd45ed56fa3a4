package terminal

import (
	"io"
	"os"
)

// Options holds command line colour overrides
type Options struct {
	ForceColor   bool // -color
	DisableColor bool // -no-color
}

// Capabilities answers whether output to one writer should be coloured.
type Capabilities struct {
	options    Options
	isTerminal func(io.Writer) bool
}

// NewCapabilities creates Capabilities using real terminal detection.
func NewCapabilities(options Options) *Capabilities {
	return &Capabilities{options: options, isTerminal: IsTerminal}
}

// ColorEnabled returns true if output written to w should be coloured.
// Priority, highest first:
//  1. command line options
//  2. CLICOLOR_FORCE=1
//  3. NO_COLOR (any value, even empty)
//  4. non-terminal writer or CI environment disables colour
//  5. TERM must name a colour-capable terminal
//  6. CLICOLOR, when set, decides; otherwise colour is on
func (c *Capabilities) ColorEnabled(w io.Writer) bool {
	if c.options.ForceColor {
		return true
	}
	if c.options.DisableColor {
		return false
	}

	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && isTruthy(v) {
		return true
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if !c.isTerminal(w) || IsCIEnvironment() {
		return false
	}
	if !TermSupportsColor() {
		return false
	}

	if v := os.Getenv("CLICOLOR"); v != "" {
		return isTruthy(v)
	}
	return true
}
