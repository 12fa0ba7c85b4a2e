package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calendart/internal/config"
	"github.com/teemow/calendart/internal/instrumentation"
	"github.com/teemow/calendart/internal/resources"
	"github.com/teemow/calendart/internal/server"
	"github.com/teemow/calendart/internal/tools/calendar_tools"
	"github.com/teemow/calendart/internal/tools/gmail_tools"
)

func newServeCmd() *cobra.Command {
	var (
		transport   string
		httpAddr    string
		yolo        bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server exposing calendar and mail tools
to AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport, without authentication; bind it
    to a loopback address

Safety Mode:
  By default, the server operates in read-only mode.
  Use --yolo to register the tools creating and patching events.

Metrics:
  --metrics-addr (or metrics_addr in the config file, or METRICS_ADDR) starts a
  Prometheus endpoint with /metrics, /healthz and /readyz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), transport, httpAddr, yolo, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "127.0.0.1:8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (create and patch events)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address of the Prometheus metrics server (disabled when empty)")

	return cmd
}

func runServe(ctx context.Context, transport, httpAddr string, yolo bool, metricsAddr string) error {
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry := instrumentation.DefaultConfig()
	telemetry.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", "error", err)
		}
	}()

	a, err := newApp(shutdownCtx, provider.Metrics())
	if err != nil {
		return err
	}

	serverContext := server.NewServerContext(shutdownCtx, server.Options{
		Requester:   a.adapter,
		User:        a.adapter.User(),
		Calendar:    a.cfg.Calendar,
		Logger:      logger,
		Metrics:     provider.Metrics(),
		AllowWrites: yolo,
	})
	defer func() {
		_ = serverContext.Shutdown()
	}()

	metricsAddr = resolveMetricsAddr(metricsAddr, a.cfg)
	// Not ready until the tools are registered.
	health := server.NewHealthChecker(serverContext)
	health.SetReady(false)

	if metricsAddr != "" && provider.Enabled() {
		metricsServer, err := startMetricsServer(metricsAddr, provider, health)
		if err != nil {
			return err
		}
		defer stopMetricsServer(metricsServer)
	}

	mcpSrv := mcpserver.NewMCPServer("calendart", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	if yolo {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	} else {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	}

	if err := registerAllTools(mcpSrv, serverContext); err != nil {
		return err
	}
	health.SetReady(true)

	switch transport {
	case "stdio":
		return runStdioServer(shutdownCtx, mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// startMetricsServer binds addr before returning so a busy port fails the
// command instead of a background goroutine.
func startMetricsServer(addr string, provider *instrumentation.Provider, health *server.HealthChecker) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}
	if err := metricsServer.Listen(); err != nil {
		return nil, err
	}

	go func() {
		if err := metricsServer.Serve(); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return metricsServer, nil
}

func stopMetricsServer(metricsServer *server.MetricsServer) {
	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown failed", "error", err)
	}
}

// resolveMetricsAddr returns the --metrics-addr flag, else metrics_addr from
// the config file, else METRICS_ADDR.
func resolveMetricsAddr(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.MetricsAddr != "" {
		return cfg.MetricsAddr
	}
	return os.Getenv("METRICS_ADDR")
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer) error {
	err := mcpserver.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("stdio server: %w", err)
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr string) error {
	if host := strings.Split(addr, ":")[0]; host == "" || host == "0.0.0.0" {
		logger.Warn("streamable HTTP server is unauthenticated and listens on all interfaces", "addr", addr)
	}

	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()
	logger.Info("streamable HTTP server started", "addr", addr, "endpoint", "/mcp")

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		stopCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(stopCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	return nil
}

// registerAllTools wires every tool group and resource into mcpSrv. Write
// tools are only added when sc allows writes.
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	groups := []struct {
		name     string
		register func(*mcpserver.MCPServer, *server.ServerContext) error
	}{
		{"calendar tools", calendar_tools.RegisterCalendarTools},
		{"gmail tools", gmail_tools.RegisterGmailTools},
		{"resources", resources.RegisterUserResources},
	}
	for _, g := range groups {
		if err := g.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s: %w", g.name, err)
		}
	}
	return nil
}

// parseCommaSeparatedList splits s on commas and drops blank entries.
// It returns nil when nothing is left.
func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
