package monitoring

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/crmarques/ddiconf"

// Tracer is a noop tracer until the embedding process registers a
// TracerProvider.
var Tracer = otel.Tracer(tracerName)

// StartReconcileSpan starts the span of one reconciliation. Callers must call
// span.End().
func StartReconcileSpan(ctx context.Context, operation, resourceType string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "reconcile."+operation,
		trace.WithAttributes(
			attribute.String("ddi.resource.type", resourceType),
			attribute.String("ddi.operation", operation),
		),
	)
}

// StartRequestSpan starts a client span for one platform API call.
func StartRequestSpan(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "ddi.request "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
}

func StartChildSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, spanName)
}

// RecordSpanError records err on span and marks it failed. No-op for nil.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
