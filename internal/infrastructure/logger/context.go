package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	idsKey
)

// IDs correlate log entries with one HTTP request and browser session
type IDs struct {
	Request string
	Session string
}

func (ids IDs) fields() []zap.Field {
	var fields []zap.Field
	if ids.Request != "" {
		fields = append(fields, zap.String("request_id", ids.Request))
	}
	if ids.Session != "" {
		fields = append(fields, zap.String("session_id", ids.Session))
	}
	return fields
}

// WithContext attaches log to ctx
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok && log != nil {
		return log
	}
	return zap.NewNop()
}

// WithIDs attaches ids to ctx. Empty fields keep what ctx already carries.
func WithIDs(ctx context.Context, ids IDs) context.Context {
	prev := IDsFrom(ctx)
	if ids.Request == "" {
		ids.Request = prev.Request
	}
	if ids.Session == "" {
		ids.Session = prev.Session
	}
	return context.WithValue(ctx, idsKey, ids)
}

// IDsFrom returns the ids carried by ctx
func IDsFrom(ctx context.Context) IDs {
	ids, _ := ctx.Value(idsKey).(IDs)
	return ids
}

// L returns the logger attached to ctx, tagged like WithLogger
func L(ctx context.Context) *zap.Logger {
	return WithLogger(ctx, FromContext(ctx))
}

// WithLogger tags log with the request and session ids and the active
// trace span found on ctx.
func WithLogger(ctx context.Context, log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	fields := IDsFrom(ctx).fields()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.Stringer("trace_id", sc.TraceID()),
			zap.Stringer("span_id", sc.SpanID()),
		)
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
