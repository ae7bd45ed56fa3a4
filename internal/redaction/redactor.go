package redaction

import (
	"strings"
	"unicode"

	"github.com/coregx/coregex"
)

// Config controls how sensitive values are redacted
type Config struct {
	// Placeholder replaces redacted values (default "[REDACTED]")
	Placeholder string
	// Keys are assignment keys whose values are redacted ("password=...", "token: ...")
	Keys []string
	// Schemes are authorization schemes whose credential is redacted ("Bearer ...")
	Schemes []string
}

// DefaultConfig returns default redaction configuration
func DefaultConfig() Config {
	return Config{
		Placeholder: DefaultPlaceholder,
		Keys:        DefaultKeys(),
		Schemes:     DefaultSchemes(),
	}
}

// Redactor applies compiled redaction patterns to text. It is safe for
// concurrent use.
type Redactor struct {
	placeholder string
	assignments *coregex.Regexp
	schemes     *coregex.Regexp
}

// New compiles the patterns described by cfg.
func New(cfg Config) (*Redactor, error) {
	r := &Redactor{placeholder: cfg.Placeholder}
	if r.placeholder == "" {
		r.placeholder = DefaultPlaceholder
	}

	if len(cfg.Keys) > 0 {
		pattern := `(` + alternation(cfg.Keys) + `)\s*[=:]\s*[^\s,;&]+`
		re, err := coregex.Compile(pattern)
		if err != nil {
			return nil, &ErrRegexCompilationFailed{Pattern: pattern, Err: err}
		}
		r.assignments = re
	}

	if len(cfg.Schemes) > 0 {
		pattern := `(` + alternation(cfg.Schemes) + `)[ \t]+[^\s,;]+`
		re, err := coregex.Compile(pattern)
		if err != nil {
			return nil, &ErrRegexCompilationFailed{Pattern: pattern, Err: err}
		}
		r.schemes = re
	}

	return r, nil
}

// RedactText returns text with every credential replaced by the placeholder.
// Keys and schemes keep their original spelling.
func (r *Redactor) RedactText(text string) string {
	if text == "" {
		return text
	}

	result := text
	if r.assignments != nil {
		result = r.assignments.ReplaceAllStringFunc(result, func(match string) string {
			sep := strings.IndexAny(match, "=:")
			if sep < 0 {
				return match
			}
			return match[:sep+1] + r.placeholder
		})
	}
	if r.schemes != nil {
		result = r.schemes.ReplaceAllStringFunc(result, func(match string) string {
			sp := strings.IndexFunc(match, unicode.IsSpace)
			if sp < 0 {
				return match
			}
			return match[:sp+1] + r.placeholder
		})
	}
	return result
}
