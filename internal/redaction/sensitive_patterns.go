// Package redaction removes credentials from error messages before they are
// written by the legacy reporting sinks.
package redaction

import (
	"strings"
	"unicode"

	"github.com/coregx/coregex"
)

// DefaultPlaceholder replaces every redacted value.
const DefaultPlaceholder = "[REDACTED]"

// DefaultKeys returns the assignment keys whose values are redacted, e.g. the
// value in "password=hunter2" or "api_key: abc".
func DefaultKeys() []string {
	return []string{
		"password",
		"passwd",
		"secret",
		"token",
		"api_key",
		"apikey",
		"access_key",
		"private_key",
		"client_secret",
	}
}

// DefaultSchemes returns the authorization schemes whose credential follows
// after a space, e.g. "Bearer eyJhbGciOi...".
func DefaultSchemes() []string {
	return []string{
		"bearer",
		"basic",
	}
}

// alternation joins literals into a regex alternation group body. Letters
// become two-case classes so keys match in any case.
func alternation(words []string) string {
	escaped := make([]string, 0, len(words))
	for _, w := range words {
		escaped = append(escaped, caseFold(coregex.QuoteMeta(w)))
	}
	return strings.Join(escaped, "|")
}

// caseFold rewrites each ASCII letter of a quoted literal as [xX].
func caseFold(quoted string) string {
	var b strings.Builder
	for _, r := range quoted {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		if r > unicode.MaxASCII || lower == upper {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('[')
		b.WriteRune(lower)
		b.WriteRune(upper)
		b.WriteByte(']')
	}
	return b.String()
}
