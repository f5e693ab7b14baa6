// MediaWiki MCP Server - A Model Context Protocol server backed by a
// MediaWiki session client. Provides tools for reading articles, listing
// categories, editing existing pages and managing the login session.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/mediawiki-api-client/tools"
	"github.com/olgasafonova/mediawiki-api-client/tracing"
	"github.com/olgasafonova/mediawiki-api-client/wiki"
)

const (
	ServerName    = "mediawiki-mcp-server"
	ServerVersion = "1.0.0"
)

// serverConfig holds settings for the MCP process itself
type serverConfig struct {
	// MetricsAddr enables a Prometheus /metrics listener when set (e.g. ":9090")
	MetricsAddr string     `env:"MCP_METRICS_ADDR"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

func loadServerConfig() (serverConfig, error) {
	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse server environment: %w", err)
	}
	return cfg, nil
}

func main() {
	srvCfg, err := loadServerConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Logs go to stderr; stdout carries the MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: srvCfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srvCfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, srvCfg serverConfig, logger *slog.Logger) error {
	config, err := wiki.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tracingCfg, err := tracing.LoadConfig()
	if err != nil {
		return err
	}
	shutdownTracing, err := tracing.Setup(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	session, err := wiki.NewSession(config, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if config.HasCredentials() {
		if _, err := session.Login(ctx, config.Username, config.Password); err != nil {
			// Read tools still work anonymously
			logger.Warn("Login on startup failed", "error", err)
		}
	}
	defer logoutOnExit(session, logger)

	if srvCfg.MetricsAddr != "" {
		metricsServer := startMetricsServer(srvCfg.MetricsAddr, logger)
		defer func() { _ = metricsServer.Close() }()
	}

	server := newServer(session, logger)

	logger.Info("Starting MediaWiki MCP Server",
		"name", ServerName,
		"version", ServerVersion,
		"site", config.Site,
		"session", session.ID(),
		"logged_in", session.LoggedIn(),
	)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newServer creates the MCP server with every tool registered
func newServer(session *wiki.Session, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger: logger,
		Instructions: `MediaWiki MCP Server exposes one wiki session.

Available tools:
- mediawiki_get_article: Read the wikitext of a page
- mediawiki_category_members: List pages in a category
- mediawiki_edit_page: Edit an existing page (text, append_text or prepend_text)
- mediawiki_login / mediawiki_logout: Manage the session login
- mediawiki_session_status: Show site, login state and user

Configure via environment variables:
- MEDIAWIKI_SITE: Wiki host (e.g., en.wikipedia.org)
- MEDIAWIKI_USERNAME / MEDIAWIKI_PASSWORD: Bot credentials (for editing)`,
	})

	tools.NewHandlerRegistry(session, logger).RegisterAll(server)
	return server
}

// metricsHandler serves the Prometheus registry
func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func startMetricsServer(addr string, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metricsHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", addr)
	return srv
}

// logoutOnExit ends a logged-in session before the process exits
func logoutOnExit(session *wiki.Session, logger *slog.Logger) {
	if !session.LoggedIn() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := session.Logout(ctx); err != nil {
		logger.Warn("Logout on exit failed", "error", err)
	}
}
