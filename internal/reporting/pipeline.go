package reporting

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/promotion"
)

// ErrorHandler is a user-installed handler. It returns true when it handled
// the event, which stops the legacy path for that event, including fatal
// termination of catchable fatal categories.
type ErrorHandler func(ctx context.Context, event promotion.Event) bool

type installedHandler struct {
	fn         ErrorHandler
	categories errcategory.Set
}

// TextRedactor rewrites report messages before they reach the sinks.
type TextRedactor interface {
	RedactText(text string) string
}

// Options configures a Pipeline
type Options struct {
	Filter   Filter
	Sinks    []Sink
	Redactor TextRedactor     // optional
	Clock    func() time.Time // optional, defaults to time.Now
}

// Result describes what the legacy path did with one event.
type Result struct {
	// Handled is true when a user handler took the event.
	Handled bool
	// Reported is true when the filter let the event reach the sinks.
	Reported bool
	// Terminated is true when the event ends execution.
	Terminated bool
	// SinkErr joins the errors of sinks that failed; it never affects the
	// other fields.
	SinkErr error
}

// Pipeline is the legacy reporting path. It is safe for concurrent use.
type Pipeline struct {
	filter   Filter
	sinks    []Sink
	redactor TextRedactor
	clock    func() time.Time
	handler  atomic.Pointer[installedHandler]
}

// NewPipeline creates a legacy reporting pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	for _, s := range opts.Sinks {
		if s == nil {
			return nil, ErrNilSink
		}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		filter:   opts.Filter,
		sinks:    append([]Sink(nil), opts.Sinks...),
		redactor: opts.Redactor,
		clock:    clock,
	}, nil
}

// Filter returns the pipeline's reporting filter.
func (p *Pipeline) Filter() Filter {
	return p.filter
}

// SetErrorHandler installs fn for the given categories and returns the
// previously installed handler, if any. Uncatchable categories are dropped
// from categories. A nil fn removes the handler.
func (p *Pipeline) SetErrorHandler(fn ErrorHandler, categories errcategory.Set) ErrorHandler {
	var next *installedHandler
	if fn != nil {
		next = &installedHandler{fn: fn, categories: categories.Intersect(errcategory.Catchable)}
	}
	prev := p.handler.Swap(next)
	if prev == nil {
		return nil
	}
	return prev.fn
}

// Handle runs one event through the legacy path:
//
//  1. a user handler installed for the category is called first when the
//     event is in runtime context; if it returns true nothing else happens;
//  2. the filter, narrowed by suppression in ctx, decides visibility;
//  3. visible reports go to every sink;
//  4. unhandled fatal categories return a *TerminationError.
func (p *Pipeline) Handle(ctx context.Context, event promotion.Event) (Result, error) {
	var res Result

	if h := p.handler.Load(); h != nil && event.InRuntimeContext && h.categories.Has(event.Category) {
		if h.fn(ctx, event) {
			res.Handled = true
			return res, nil
		}
	}

	if p.filter.Reports(event.Category, Suppressed(ctx)) {
		res.Reported = true
		res.SinkErr = p.write(ctx, event)
	}

	if event.Category.Fatal() {
		res.Terminated = true
		return res, &TerminationError{Event: event}
	}
	return res, nil
}

func (p *Pipeline) write(ctx context.Context, event promotion.Event) error {
	msg := event.Message
	if p.redactor != nil {
		msg = p.redactor.RedactText(msg)
	}
	r := Report{Event: event, Message: msg, Time: p.clock()}

	var errs []error
	for _, s := range p.sinks {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, &SinkError{Sink: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
