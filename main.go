// Volcano MCP Server - A Model Context Protocol server for the Smithsonian
// Global Volcanism Program feature service.
// Provides tools for searching volcanoes and eruptions and assessing exposure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/volcano-mcp-server/internal/base"
	"github.com/olgasafonova/volcano-mcp-server/internal/config"
	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
	"github.com/olgasafonova/volcano-mcp-server/tools"
	"github.com/olgasafonova/volcano-mcp-server/tracing"
)

// recoverPanic logs a recovered panic instead of crashing the process
func recoverPanic(logger *slog.Logger, operation string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered",
			"operation", operation,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}

const (
	ServerName    = "volcano-mcp-server"
	ServerVersion = "1.0.0"
)

const instructions = `Volcano MCP Server provides access to the Smithsonian Global Volcanism Program database of Holocene volcanoes and eruptions.

Available tools:
- search-volcanoes: Search volcanoes by country, type, elevation or bounding box
- search-eruptions: Search eruptions by volcano, date range, VEI, country or bounding box
- find-recent-activity: Eruptions that started within the last N years
- assess-volcanic-risk: Recently active volcanoes near large populations
- get-volcano-details: Profile and eruption history for a named volcano
- find-large-eruptions: Historically significant eruptions (VEI 4+)

Results are GeoJSON FeatureCollections. Set verbose=true for geological summaries and photo credits.

Configure via environment variables:
- VOLCANO_WFS_URL: Feature service endpoint
- VOLCANO_TIMEOUT: Upstream request timeout (e.g. 30s)
- VOLCANO_CACHE_TTL: Response cache TTL (0 disables)`

func main() {
	httpAddr := flag.String("http", "", "Serve streamable HTTP on this address (e.g. :8080) instead of stdio")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address in stdio mode (e.g. :9090)")
	httpRateLimit := flag.Int("rate-limit", 60, "HTTP requests per minute per client IP (0 disables)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", ServerName, ServerVersion)
		return
	}

	// Load configuration from environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logging to stderr (stdout is used for MCP protocol)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	features := newFeatureClient(cfg, logger)
	defer features.Close()

	server := newServer(features, logger)

	logger.Info("Starting Volcano MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"wfs_url", features.BaseURL(),
		"cache_ttl", cfg.CacheTTL,
		"transport", transportName(*httpAddr),
	)

	if *httpAddr != "" {
		if err := runHTTP(ctx, server, *httpAddr, SecurityConfig{
			RateLimit:   *httpRateLimit,
			MaxBodySize: DefaultMaxBodySize,
		}, logger); err != nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

// newFeatureClient builds the shared WFS client from cfg
func newFeatureClient(cfg *config.Config, logger *slog.Logger) *wfs.Client {
	return wfs.NewClient(wfs.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		CacheTTL:  cfg.CacheTTL,
	},
		base.WithTimeout(cfg.Timeout),
		base.WithMaxAttempts(cfg.MaxAttempts()),
		base.WithRateLimit(cfg.RateLimit, int(math.Max(1, math.Ceil(cfg.RateLimit)))),
		base.WithLogger(logger),
	)
}

// newServer creates the MCP server with every tool, prompt and resource registered
func newServer(features *wfs.Client, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})

	registry := tools.NewHandlerRegistry(volcano.NewClient(features), logger)
	registry.RegisterAll(server)
	return server
}

func transportName(httpAddr string) string {
	if httpAddr != "" {
		return "http"
	}
	return "stdio"
}

// serveMetrics exposes /metrics alongside the stdio transport
func serveMetrics(addr string, logger *slog.Logger) {
	defer recoverPanic(logger, "metrics server")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", "error", err)
	}
}
