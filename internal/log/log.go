// Package log configures slog with context-carried attributes.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxAttrsKey struct{}

// ContextHandler copies attributes stored in the context onto every
// record before delegating to the wrapped handler. Request ids and
// user ids attached once via AppendCtx then appear on every log line
// for that request.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context carrying attr in addition to any
// attributes already present.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	var attrs []slog.Attr
	if existing, ok := parent.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		attrs = append(attrs, existing...)
	}
	attrs = append(attrs, attr)
	return context.WithValue(parent, ctxAttrsKey{}, attrs)
}

// New builds the application logger: JSON on stderr wrapped in the
// context handler. A nil options defaults to debug level.
func New(options *slog.HandlerOptions) *slog.Logger {
	if options == nil {
		options = &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(os.Stderr, options),
	})
}

// NullLogger discards everything. Used as the default in constructors
// that accept an optional logger.
func NullLogger() *slog.Logger {
	return slog.New(&ContextHandler{
		Handler: slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}),
	})
}
