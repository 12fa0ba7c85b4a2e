package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/calendart/internal/instrumentation"
)

const (
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds the graceful stop of the HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider must export metrics to Prometheus.
	InstrumentationProvider *instrumentation.Provider

	// Health adds /readyz and /healthz/detailed. Without it only a plain
	// /healthz is served.
	Health *HealthChecker

	Logger *slog.Logger
}

// MetricsServer exposes the Prometheus registry and the health probes on a
// port of their own.
type MetricsServer struct {
	addr   string
	logger *slog.Logger
	srv    *http.Server
	ln     net.Listener
}

// NewMetricsServer validates cfg and builds the handler. Nothing is bound
// until Listen.
func NewMetricsServer(cfg MetricsServerConfig) (*MetricsServer, error) {
	p := cfg.InstrumentationProvider
	switch {
	case p == nil:
		return nil, errors.New("metrics server needs an instrumentation provider")
	case !p.Enabled():
		return nil, errors.New("instrumentation is disabled")
	case !p.UsesPrometheus():
		return nil, errors.New("metrics are not exported to prometheus")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultMetricsAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	// The otel prometheus exporter registers with the default registry.
	mux.Handle("/metrics", promhttp.Handler())
	if cfg.Health != nil {
		cfg.Health.RegisterHealthEndpoints(mux)
	} else {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			writeHealth(w, http.StatusOK, HealthResponse{Status: healthOK})
		})
	}

	return &MetricsServer{
		addr:   cfg.Addr,
		logger: cfg.Logger,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
			WriteTimeout:      metricsWriteTimeout,
			IdleTimeout:       metricsIdleTimeout,
		},
	}, nil
}

// Handler returns the mux serving /metrics and the health endpoints.
func (s *MetricsServer) Handler() http.Handler { return s.srv.Handler }

// Listen binds the address so bind errors surface before Serve runs in
// the background.
func (s *MetricsServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listener on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.addr = ln.Addr().String()
	return nil
}

// Serve blocks until Shutdown. It returns nil after a graceful stop.
func (s *MetricsServer) Serve() error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.Info("serving metrics", slog.String("addr", s.addr))
	if err := s.srv.Serve(s.ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully. Calling it before Listen is a no-op.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	s.logger.Info("stopping metrics server")
	return s.srv.Shutdown(ctx)
}

// Addr is the configured address, or the bound one after Listen.
func (s *MetricsServer) Addr() string { return s.addr }
