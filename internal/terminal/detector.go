// Package terminal decides whether the display sink may colour its output.
// The decision combines command line flags, the CLICOLOR/NO_COLOR
// conventions, CI detection and whether the destination writer is a terminal.
package terminal

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ciEnvVars contains common CI environment variables
var ciEnvVars = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"TRAVIS",                 // Travis CI
	"CIRCLECI",               // Circle CI
	"JENKINS_URL",            // Jenkins
	"BUILD_NUMBER",           // Jenkins/TeamCity/etc
	"GITLAB_CI",              // GitLab CI
	"BUILDKITE",              // Buildkite
	"TF_BUILD",               // Azure DevOps
}

// colorTerminals lists TERM values (or prefixes) known to support basic colours.
var colorTerminals = []string{
	"xterm",
	"screen",
	"tmux",
	"rxvt",
	"vt100",
	"vt220",
	"ansi",
	"linux",
	"cygwin",
	"putty",
}

// fdWriter is implemented by *os.File.
type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsCIEnvironment checks if the current environment is a CI/CD system
func IsCIEnvironment() bool {
	for _, envVar := range ciEnvVars {
		if value := os.Getenv(envVar); value != "" {
			// CI=false or CI=0 is not a CI environment
			if envVar == "CI" {
				return !isFalsy(value)
			}
			return true
		}
	}
	return false
}

// TermSupportsColor checks the TERM environment variable.
func TermSupportsColor() bool {
	t := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if t == "" || t == "dumb" {
		return false
	}
	for _, colorTerm := range colorTerminals {
		if t == colorTerm || strings.HasPrefix(t, colorTerm+"-") {
			return true
		}
	}
	return false
}

// isTruthy supports "1", "true", "yes" (case insensitive)
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func isFalsy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "0", "false", "no":
		return true
	default:
		return false
	}
}
