package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "storefront"

// Span attribute keys
const (
	SessionIDKey   = attribute.Key("session_id")
	ProductIDKey   = attribute.Key("product_id")
	QuantityKey    = attribute.Key("quantity")
	OrderNumberKey = attribute.Key("order_number")
	AmountKey      = attribute.Key("amount")
	RedirectToKey  = attribute.Key("redirect_to")
)

// StartSpan starts an internal span named name, e.g. "cart.checkout", on
// the global tracer provider. The caller ends it.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Fail records err on span and marks it failed. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Succeed adds attrs to span and marks it ok
func Succeed(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// Event adds a named event to span
func Event(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
