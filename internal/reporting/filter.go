// Package reporting implements the legacy error path: user error handlers,
// the error_reporting filter, the silence operator, output sinks and fatal
// termination. Promotion decisions never pass through this package.
package reporting

import (
	"context"

	"github.com/isseis/go-errpromote/internal/errcategory"
)

// Filter decides whether a category is reported on the legacy path. It is an
// immutable value built from an error_reporting set.
type Filter struct {
	level errcategory.Set
}

// NewFilter creates a filter reporting the given categories.
func NewFilter(level errcategory.Set) Filter {
	return Filter{level: level}
}

// DefaultFilter reports every category.
func DefaultFilter() Filter {
	return NewFilter(errcategory.All)
}

// Level returns the configured error_reporting set.
func (f Filter) Level() errcategory.Set {
	return f.level
}

// Effective returns the set in force when suppressed is true or false.
// Suppression narrows reporting to fatal categories only.
func (f Filter) Effective(suppressed bool) errcategory.Set {
	if suppressed {
		return f.level.Intersect(errcategory.Fatal)
	}
	return f.level
}

// Reports reports whether c is observable.
func (f Filter) Reports(c errcategory.Category, suppressed bool) bool {
	return f.Effective(suppressed).Has(c)
}

type suppressionKey struct{}

// WithSuppression returns a context in which non-fatal legacy reports are
// silenced, the equivalent of prefixing an expression with the silence
// operator. It has no effect on promotion.
func WithSuppression(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressionKey{}, true)
}

// WithoutSuppression returns a context that clears an inherited suppression.
func WithoutSuppression(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressionKey{}, false)
}

// Suppressed reports whether ctx carries the suppression flag.
func Suppressed(ctx context.Context) bool {
	v, _ := ctx.Value(suppressionKey{}).(bool)
	return v
}
