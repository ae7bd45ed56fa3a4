package logging

import (
	"context"
	"log/slog"
)

// TextRedactor rewrites sensitive fragments of a string.
type TextRedactor interface {
	RedactText(text string) string
}

// RedactingHandler redacts the message and every string attribute of a
// record before forwarding it.
type RedactingHandler struct {
	handler  slog.Handler
	redactor TextRedactor
}

// NewRedactingHandler wraps handler. A nil redactor forwards records
// unchanged.
func NewRedactingHandler(handler slog.Handler, redactor TextRedactor) *RedactingHandler {
	return &RedactingHandler{handler: handler, redactor: redactor}
}

// Enabled implements slog.Handler
func (r *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return r.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (r *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	if r.redactor == nil {
		return r.handler.Handle(ctx, record)
	}

	out := slog.NewRecord(record.Time, record.Level, r.redactor.RedactText(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(r.redactAttr(attr))
		return true
	})
	return r.handler.Handle(ctx, out)
}

// WithAttrs implements slog.Handler
func (r *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		redacted[i] = r.redactAttr(attr)
	}
	return &RedactingHandler{handler: r.handler.WithAttrs(redacted), redactor: r.redactor}
}

// WithGroup implements slog.Handler
func (r *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: r.handler.WithGroup(name), redactor: r.redactor}
}

func (r *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	if r.redactor == nil {
		return attr
	}

	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, r.redactor.RedactText(value.String()))
	case slog.KindGroup:
		group := value.Group()
		redacted := make([]slog.Attr, len(group))
		for i, a := range group {
			redacted[i] = r.redactAttr(a)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(redacted...)}
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return slog.String(attr.Key, r.redactor.RedactText(err.Error()))
		}
	}
	return slog.Attr{Key: attr.Key, Value: value}
}
