package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars), empty without an active span.
	TraceID string
	SpanID  string
}

// TraceInfoFromContext reads the active span from ctx. Both fields are empty
// when the context carries no valid span, e.g. in unit tests.
func TraceInfoFromContext(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}
