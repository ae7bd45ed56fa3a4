// Package config loads the errpromote configuration file. TOML and YAML are
// supported, selected by file extension; unknown keys are rejected.
package config

import (
	"fmt"

	"github.com/isseis/go-errpromote/internal/directive"
	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/reporting"
)

// DefaultNATSSubject is used when [nats] sets a URL but no subject.
const DefaultNATSSubject = "errpromote.reports"

// Config is the root of the configuration file.
type Config struct {
	Reporting ReportingConfig `toml:"reporting" yaml:"reporting"`
	NATS      NATSConfig      `toml:"nats" yaml:"nats"`
	Scopes    []ScopeConfig   `toml:"scopes" yaml:"scopes"`
}

// ReportingConfig configures the legacy reporting pipeline.
type ReportingConfig struct {
	// ErrorReporting is an integer, a constant name or a list of names.
	// Nil means E_ALL.
	ErrorReporting any  `toml:"error_reporting" yaml:"error_reporting"`
	DisplayErrors  bool `toml:"display_errors" yaml:"display_errors"`
	// LogErrors sends reports to the structured log, and to ErrorLog when
	// it is set.
	LogErrors bool   `toml:"log_errors" yaml:"log_errors"`
	ErrorLog  string `toml:"error_log" yaml:"error_log"`
	Redact    bool   `toml:"redact" yaml:"redact"`
}

// NATSConfig configures the optional NATS sink.
type NATSConfig struct {
	URL     string `toml:"url" yaml:"url"`
	Subject string `toml:"subject" yaml:"subject"`
}

// Enabled reports whether reports are published to NATS.
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

// ScopeConfig declares the throw_errors directive of one file.
type ScopeConfig struct {
	File        string `toml:"file" yaml:"file"`
	ThrowErrors any    `toml:"throw_errors" yaml:"throw_errors"`
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		Reporting: ReportingConfig{
			DisplayErrors: true,
		},
	}
}

// applyDefaults fills values that depend on other keys.
func (c *Config) applyDefaults() {
	if c.NATS.Enabled() && c.NATS.Subject == "" {
		c.NATS.Subject = DefaultNATSSubject
	}
}

// Validate checks every value that can be checked without side effects.
func (c *Config) Validate() error {
	if _, err := c.ReportingLevel(); err != nil {
		return err
	}

	if c.NATS.Subject != "" && !c.NATS.Enabled() {
		return ErrNATSSubjectWithoutURL
	}

	seen := make(map[string]int, len(c.Scopes))
	for i, s := range c.Scopes {
		if s.File == "" {
			return &ScopeError{Index: i, Err: ErrEmptyScopeFile}
		}
		if first, dup := seen[s.File]; dup {
			return &ScopeError{Index: i, File: s.File, Err: fmt.Errorf("%w (first declared at scopes[%d])", ErrDuplicateScope, first)}
		}
		seen[s.File] = i

		if _, err := directive.ResolveForScope(s.File, s.ThrowErrors); err != nil {
			return &ScopeError{Index: i, File: s.File, Err: err}
		}
	}
	return nil
}

// ReportingLevel resolves error_reporting.
func (c *Config) ReportingLevel() (errcategory.Set, error) {
	if c.Reporting.ErrorReporting == nil {
		return errcategory.All, nil
	}
	set, err := errcategory.FromRaw(c.Reporting.ErrorReporting)
	if err != nil {
		return 0, fmt.Errorf("%w (value %v): %w", ErrInvalidErrorReporting, c.Reporting.ErrorReporting, err)
	}
	return set, nil
}

// Filter returns the reporting filter for error_reporting.
func (c *Config) Filter() (reporting.Filter, error) {
	level, err := c.ReportingLevel()
	if err != nil {
		return reporting.Filter{}, err
	}
	return reporting.NewFilter(level), nil
}

// BuildTable declares every configured scope in a new directive table.
func (c *Config) BuildTable() (*directive.Table, error) {
	table := directive.NewTable()
	for i, s := range c.Scopes {
		if _, err := table.Declare(s.File, s.ThrowErrors); err != nil {
			return nil, &ScopeError{Index: i, File: s.File, Err: err}
		}
	}
	return table, nil
}
