// Package instrumentation wires OpenTelemetry metrics and tracing for calendart.
//
// # Metrics
//
// Google API:
//   - google_api_operations_total: requests by service, operation and status
//   - google_api_operation_duration_seconds: request durations
//   - google_api_errors_total: classified failures by service and error kind
//
// Event synchronisation:
//   - calendar_sync_pages_total: listing pages fetched
//   - calendar_sync_events_total: events hydrated from those pages
//   - calendar_sync_runs_total: sync command runs by mode (full, incremental) and status
//
// MCP tools:
//   - mcp_tool_invocations_total and mcp_tool_duration_seconds
//
// # Tracing
//
// Spans are created for Google API requests (google.<service>.<operation>),
// paginated listings (calendar.sync) and MCP tool calls (tool.<name>).
//
// # Configuration
//
// Environment variables read by DefaultConfig:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: calendart)
//   - METRICS_DETAILED_LABELS (default: false)
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordSyncRun(ctx, instrumentation.SyncModeIncremental, instrumentation.StatusSuccess)
package instrumentation
