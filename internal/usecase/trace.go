package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/riskibarqy/fpl-stats/internal/usecase")

// startSpan opens name under the span carried by ctx. A root span always
// opens; a child of nothing gets the non-recording span of ctx instead.
func startSpan(ctx context.Context, name string, root bool) (context.Context, trace.Span) {
	if !root && !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name)
}

func failSpan(span trace.Span, err error, description string) {
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Error, description)
}
