package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/replica-routing-go/routing"
)

const spanAttrStatus = "routing.status"

// TracingCollector implements routing.TracingCollector using the OpenTelemetry tracing API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a tracing collector starting its spans with tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a client span named name carrying attrs.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, routing.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(toAttributes(attrs)...),
	)

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan adds attrs to the span, sets its status and ends it.
// Span contexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx routing.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ routing.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements routing.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the dispatch status to an OpenTelemetry status code.
// Unknown statuses are kept as the routing.status attribute and leave the code unset.
func (s *OTelSpanContext) SetStatus(status string) {
	switch status {
	case "success":
		s.span.SetStatus(codes.Ok, "")
	case "error":
		s.span.SetStatus(codes.Error, "routed operation failed")
	case "cancelled":
		s.span.SetStatus(codes.Error, "routed operation cancelled")
	case "timeout":
		s.span.SetStatus(codes.Error, "routed operation timed out")
	default:
		s.span.SetAttributes(attribute.String(spanAttrStatus, status))
	}
}

// AddAttribute adds an attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ routing.SpanContext = (*OTelSpanContext)(nil)
