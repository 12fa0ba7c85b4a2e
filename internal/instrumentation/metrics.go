package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrKind      = "kind"
	attrTool      = "tool"
	attrMode      = "mode"
	attrCalendar  = "calendar"
)

// Metrics records API, synchronisation and tool metrics. The zero value is a
// valid no-op recorder.
type Metrics struct {
	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram
	googleAPIErrorsTotal       metric.Int64Counter

	syncPagesTotal  metric.Int64Counter
	syncEventsTotal metric.Int64Counter
	syncRunsTotal   metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	detailedLabels bool
}

// durationBuckets spans quick metadata reads up to slow paginated listings.
var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// instruments creates instruments on a meter and keeps every error.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("counter %s: %w", name, err))
	}
	return c
}

func (in *instruments) seconds(name, description string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("histogram %s: %w", name, err))
	}
	return h
}

// NewMetrics creates every instrument on meter. detailedLabels adds the
// calendar id to sync page metrics.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		googleAPIOperationsTotal:   in.counter("google_api_operations_total", "Google API requests by service, operation and status", "{operation}"),
		googleAPIOperationDuration: in.seconds("google_api_operation_duration_seconds", "Google API request duration"),
		googleAPIErrorsTotal:       in.counter("google_api_errors_total", "Google API errors by classified kind", "{error}"),

		syncPagesTotal:  in.counter("calendar_sync_pages_total", "Event pages fetched while listing", "{page}"),
		syncEventsTotal: in.counter("calendar_sync_events_total", "Events hydrated while listing", "{event}"),
		syncRunsTotal:   in.counter("calendar_sync_runs_total", "Synchronisation runs by mode and status", "{run}"),

		toolInvocationsTotal: in.counter("mcp_tool_invocations_total", "MCP tool calls by tool and status", "{invocation}"),
		toolDuration:         in.seconds("mcp_tool_duration_seconds", "MCP tool execution duration"),

		detailedLabels: detailedLabels,
	}
	if err := errors.Join(in.errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordGoogleAPIOperation records one request to a Google service.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)

	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIError counts a failed request by its error kind
// (e.g. "rate_limit_exceeded", "gone").
func (m *Metrics) RecordGoogleAPIError(ctx context.Context, service, kind string) {
	if m == nil || m.googleAPIErrorsTotal == nil {
		return
	}

	m.googleAPIErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrKind, kind),
	))
}

// RecordSyncPage records one listing page and the number of events kept from it.
func (m *Metrics) RecordSyncPage(ctx context.Context, calendarID string, events int) {
	if m == nil || m.syncPagesTotal == nil || m.syncEventsTotal == nil {
		return
	}

	var attrs []attribute.KeyValue
	if m.detailedLabels && calendarID != "" {
		attrs = append(attrs, attribute.String(attrCalendar, calendarID))
	}

	m.syncPagesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.syncEventsTotal.Add(ctx, int64(events), metric.WithAttributes(attrs...))
}

// RecordSyncRun records a synchronisation run. mode is SyncModeFull or
// SyncModeIncremental.
func (m *Metrics) RecordSyncRun(ctx context.Context, mode, status string) {
	if m == nil || m.syncRunsTotal == nil {
		return
	}

	m.syncRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMode, mode),
		attribute.String(attrStatus, status),
	))
}

// RecordToolInvocation records an MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)

	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
