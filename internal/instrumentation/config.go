package instrumentation

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
)

// Label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	ServiceCalendar = "calendar"
	ServiceGmail    = "gmail"

	SyncModeFull        = "full"
	SyncModeIncremental = "incremental"
)

// Exporter names accepted by METRICS_EXPORTER and TRACING_EXPORTER.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Config holds the OpenTelemetry settings of the process.
type Config struct {
	// ServiceName is reported as service.name (default: calendart).
	ServiceName    string
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname when empty.
	ServiceInstanceID string

	// Enabled switches metrics and tracing on. With INSTRUMENTATION_ENABLED=false
	// every recorder is a no-op.
	Enabled bool

	MetricsExporter string
	TracingExporter string

	// OTLPEndpoint is the collector address without scheme, e.g. "localhost:4318".
	OTLPEndpoint string
	OTLPInsecure bool

	// TraceSamplingRate is the ratio of sampled root spans.
	TraceSamplingRate float64

	// DetailedLabels adds calendar identifiers to sync metrics. Keep it off
	// when many calendars are synchronised.
	DetailedLabels bool
}

// DefaultConfig builds a Config from the process environment.
func DefaultConfig() Config {
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup. Unparsable booleans and floats fall
// back to their defaults.
func FromEnv(lookup func(string) (string, bool)) Config {
	e := envReader(lookup)
	return Config{
		ServiceName:       e.str("OTEL_SERVICE_NAME", "calendart"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: e.str("OTEL_SERVICE_INSTANCE_ID", ""),
		Enabled:           e.boolean("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   e.str("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   e.str("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      e.boolean("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: e.float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    e.boolean("METRICS_DETAILED_LABELS", false),
	}
}

// Validate checks exporter names, the sampling rate and the OTLP endpoint.
func (c Config) Validate() error {
	var errs []error
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		errs = append(errs, fmt.Errorf("trace sampling rate %g is outside [0, 1]", c.TraceSamplingRate))
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		errs = append(errs, fmt.Errorf("metrics exporter %q is not one of %v", c.MetricsExporter, metricsExporters))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		errs = append(errs, fmt.Errorf("tracing exporter %q is not one of %v", c.TracingExporter, tracingExporters))
	}
	usesOTLP := c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP
	if usesOTLP && c.OTLPEndpoint == "" {
		errs = append(errs, errors.New("an otlp exporter needs OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
	return errors.Join(errs...)
}

type envReader func(string) (string, bool)

func (e envReader) str(key, def string) string {
	if v, ok := e(key); ok && v != "" {
		return v
	}
	return def
}

func (e envReader) boolean(key string, def bool) bool {
	b, err := strconv.ParseBool(e.str(key, ""))
	if err != nil {
		return def
	}
	return b
}

func (e envReader) float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(e.str(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}
