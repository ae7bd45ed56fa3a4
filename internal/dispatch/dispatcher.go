// Package dispatch routes raised runtime errors either to exception
// propagation or to the legacy reporting pipeline, using the promotion mask
// declared for the file that raised them.
package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	pkgerrors "github.com/pkg/errors"

	"github.com/isseis/go-errpromote/internal/directive"
	"github.com/isseis/go-errpromote/internal/promotion"
	"github.com/isseis/go-errpromote/internal/reporting"
)

// Error definitions
var (
	// ErrNilTable is returned when a dispatcher has no directive table
	ErrNilTable = errors.New("directive table cannot be nil")

	// ErrNilPipeline is returned when a dispatcher has no legacy pipeline
	ErrNilPipeline = errors.New("legacy pipeline cannot be nil")
)

// Options configures a Dispatcher.
type Options struct {
	Table    *directive.Table
	Pipeline *reporting.Pipeline
	Logger   *slog.Logger // optional, defaults to slog.Default()
	Metrics  *Metrics     // optional
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	table    *directive.Table
	pipeline *reporting.Pipeline
	logger   *slog.Logger
	metrics  *Metrics
}

// New creates a dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Table == nil {
		return nil, ErrNilTable
	}
	if opts.Pipeline == nil {
		return nil, ErrNilPipeline
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		table:    opts.Table,
		pipeline: opts.Pipeline,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// Decide returns the decision for event under the mask of event.File
// without acting on it.
func (d *Dispatcher) Decide(event promotion.Event) promotion.Decision {
	return promotion.Decide(event, d.table.Lookup(event.File))
}

// Raise handles one raised error.
//
// A promoted error is returned as a stack-carrying error wrapping the
// *promotion.PromotedException; errors.As recovers it, and its ID matches the
// exception_id that was logged. Suppression in ctx is
// not consulted for promotion. Otherwise the event goes through the legacy
// pipeline and Raise returns its *reporting.TerminationError, or nil. Sink
// failures are logged and not returned.
func (d *Dispatcher) Raise(ctx context.Context, event promotion.Event) error {
	decision := d.Decide(event)
	d.metrics.recordDecision(event.Category, decision.Outcome)

	if decision.Outcome == promotion.Promote {
		decision.Exception.ID = ulid.Make().String()
		d.logger.DebugContext(ctx, "Error promoted to exception",
			slog.String("exception_id", decision.Exception.ID),
			slog.String("category", event.Category.String()),
			slog.String("file", event.File),
			slog.Int("line", event.Line))
		return pkgerrors.WithStack(decision.Exception)
	}

	res, err := d.pipeline.Handle(ctx, event)
	if !res.Handled {
		d.metrics.recordLegacyReport(event.Category, res.Reported)
	}
	if res.SinkErr != nil {
		d.logger.WarnContext(ctx, "Failed to write legacy error report",
			slog.String("category", event.Category.String()),
			slog.String("file", event.File),
			slog.Any("error", res.SinkErr))
	}
	if err != nil {
		d.logger.DebugContext(ctx, "Execution terminated by fatal error",
			slog.String("category", event.Category.String()),
			slog.String("reason", decision.Reason.String()))
		return err
	}
	return nil
}
