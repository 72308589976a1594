package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for graft spans.
const TracerName = "github.com/vango-dev/graft"

// Tracer returns the graft tracer from the global provider. Configure the
// provider with otel.SetTracerProvider before starting work; the default
// provider records nothing.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Start opens a span on tracer, falling back to Tracer() when nil.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Tracer()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, sets its status and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
