package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartRequestSpan starts a client span for a single generated request.
func (p *Provider) StartRequestSpan(ctx context.Context, method string, requestID int64, workerIndex int) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "rpcfire.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("rpc.method", method),
			attribute.Int64("rpcfire.request_id", requestID),
			attribute.Int("rpcfire.worker", workerIndex),
		),
	)
}

// EndSpan records outcome attributes on the span and ends it.
func EndSpan(span trace.Span, outcomeKey string, httpStatus int, err error) {
	if span == nil {
		return
	}
	if outcomeKey != "" {
		span.SetAttributes(attribute.String("rpcfire.outcome", outcomeKey))
	}
	if httpStatus != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", httpStatus))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context headers into an outgoing request.
func (p *Provider) InjectHTTPHeaders(ctx context.Context, req *http.Request) {
	if p == nil || !p.propagate {
		return
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}
