package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, detailed bool) (context.Context, *Provider) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
		DetailedLabels:  detailed,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return ctx, provider
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	ctx, provider := newTestProvider(t, false)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationPatch, StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceGmail, OperationGet, StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordGoogleAPIError(t *testing.T) {
	ctx, provider := newTestProvider(t, false)

	provider.Metrics().RecordGoogleAPIError(ctx, ServiceCalendar, "gone")
	provider.Metrics().RecordGoogleAPIError(ctx, ServiceGmail, "rate_limit_exceeded")
}

func TestMetrics_RecordSync(t *testing.T) {
	for _, detailed := range []bool{false, true} {
		ctx, provider := newTestProvider(t, detailed)
		metrics := provider.Metrics()

		metrics.RecordSyncPage(ctx, "primary", 25)
		metrics.RecordSyncPage(ctx, "", 0)
		metrics.RecordSyncRun(ctx, SyncModeFull, StatusSuccess)
		metrics.RecordSyncRun(ctx, SyncModeIncremental, StatusError)
	}
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, provider := newTestProvider(t, false)

	provider.Metrics().RecordToolInvocation(ctx, "calendar_list_events", StatusSuccess, 150*time.Millisecond)
	provider.Metrics().RecordToolInvocation(ctx, "gmail_get_message", StatusError, 10*time.Millisecond)
}

func TestMetrics_NoOp(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	var nilMetrics *Metrics
	for _, metrics := range []*Metrics{provider.Metrics(), nilMetrics} {
		metrics.RecordGoogleAPIOperation(ctx, ServiceCalendar, OperationList, StatusSuccess, time.Second)
		metrics.RecordGoogleAPIError(ctx, ServiceCalendar, "backend")
		metrics.RecordSyncPage(ctx, "primary", 3)
		metrics.RecordSyncRun(ctx, SyncModeFull, StatusSuccess)
		metrics.RecordToolInvocation(ctx, "calendar_get_event", StatusSuccess, time.Second)
	}
}
