package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

type traceKey struct{}

// With derives a child logger carrying fields and stores it on ctx. A
// "trace_id" field is also remembered so TraceID can return it.
func With(ctx context.Context, fields ...any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if k, ok := fields[i].(string); ok && k == "trace_id" {
			if v, ok := fields[i+1].(string); ok {
				ctx = context.WithValue(ctx, traceKey{}, v)
			}
		}
	}
	return WithLogger(ctx, From(ctx).With(fields...))
}

// WithLogger stores l on ctx as-is.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, l)
}

// From returns the request-scoped logger, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return LoggerWrapper()
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
