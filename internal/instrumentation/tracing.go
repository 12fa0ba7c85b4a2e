package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for every span of the module.
const TracerName = "github.com/teemow/calendart"

// Span attribute keys.
const (
	SpanAttrTool       = "mcp.tool"
	SpanAttrService    = "google.service"
	SpanAttrOperation  = "google.operation"
	SpanAttrMethod     = "http.request.method"
	SpanAttrPath       = "url.path"
	SpanAttrStatusCode = "http.response.status_code"
	SpanAttrErrorKind  = "google.error.kind"
	SpanAttrCalendar   = "calendar.id"
	SpanAttrPage       = "calendar.page"
)

// start resolves the tracer on every call so a provider installed after
// package init is picked up.
func start(ctx context.Context, name string, kind trace.SpanKind, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}

// StartToolSpan starts a server span for an MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return start(ctx, "tool."+toolName, trace.SpanKindServer, attrs)
}

// StartGoogleAPISpan starts a client span named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return start(ctx, "google."+service+"."+operation, trace.SpanKindClient, attrs)
}

// StartSyncSpan starts an internal span around a paginated event listing.
func StartSyncSpan(ctx context.Context, calendarID string) (context.Context, trace.Span) {
	return start(ctx, "calendar.sync", trace.SpanKindInternal,
		[]attribute.KeyValue{attribute.String(SpanAttrCalendar, calendarID)})
}

// SetSpanError records err on span. A nil error leaves the span untouched.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// EndSpan sets the span status from err, ends the span and returns the
// matching status label for metrics.
func EndSpan(span trace.Span, err error) string {
	defer span.End()
	if err != nil {
		SetSpanError(span, err)
		return StatusError
	}
	SetSpanSuccess(span)
	return StatusSuccess
}

// AddSpanEvent adds a named event to span.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
