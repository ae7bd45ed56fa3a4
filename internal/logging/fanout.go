// Package logging sets up the slog loggers used by errpromote: a console
// text handler, an optional JSON log file enriched with run metadata, and a
// redacting decorator in front of both.
package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Destination names for the handlers built by Setup.
const (
	DestinationConsole = "console"
	DestinationLogFile = "log_file"
)

// Destination is one named output of a Fanout.
type Destination struct {
	Name    string
	Handler slog.Handler
}

// DestinationError reports a record that one destination failed to write.
type DestinationError struct {
	Name string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

// Fanout sends every record to each enabled destination. A failing
// destination does not stop the others; its error is returned as a
// *DestinationError joined with any other failures.
type Fanout struct {
	destinations []Destination
}

// NewFanout creates a Fanout. Destinations with a nil handler are skipped.
func NewFanout(destinations ...Destination) *Fanout {
	ds := make([]Destination, 0, len(destinations))
	for _, d := range destinations {
		if d.Handler != nil {
			ds = append(ds, d)
		}
	}
	return &Fanout{destinations: ds}
}

// Enabled is true when any destination is enabled for level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, d := range f.destinations {
		if d.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, d := range f.destinations {
		if !d.Handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := d.Handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, &DestinationError{Name: d.Name, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Names returns the destination names in order.
func (f *Fanout) Names() []string {
	names := make([]string, len(f.destinations))
	for i, d := range f.destinations {
		names[i] = d.Name
	}
	return names
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	next := make([]Destination, len(f.destinations))
	for i, d := range f.destinations {
		next[i] = Destination{Name: d.Name, Handler: fn(d.Handler)}
	}
	return &Fanout{destinations: next}
}
