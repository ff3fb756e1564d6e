// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"bias-scan/internal/config"
	"bias-scan/internal/core"
	"bias-scan/internal/guardian"
	"bias-scan/internal/monitoring"
	"bias-scan/internal/observability"
	"bias-scan/internal/performance"
	"bias-scan/internal/resilience"
	"bias-scan/internal/version"

	// Import formatters to register them
	_ "bias-scan/internal/formatters/csv"
	_ "bias-scan/internal/formatters/docx"
	_ "bias-scan/internal/formatters/json"
	_ "bias-scan/internal/formatters/pdf"
	_ "bias-scan/internal/formatters/text"
	_ "bias-scan/internal/formatters/yaml"

	"github.com/getsentry/sentry-go"
)

const (
	// MaxUploadBytes matches the default extraction size limit
	MaxUploadBytes = 10 << 20

	maxJSONBodyBytes = 2 << 20
	portAttempts     = 10
	shutdownTimeout  = 10 * time.Second
)

//go:embed template.html
var homeHTML string

var homeTemplate = template.Must(template.New("home").Parse(homeHTML))

// Dependencies are the shared components the server exposes. Only Scanner
// is required; the rest are created when nil.
type Dependencies struct {
	Scanner  *core.Scanner
	Audit    *guardian.Log
	Stats    *performance.Stats
	Metrics  *monitoring.Metrics
	Health   *monitoring.HealthChecker
	Observer *observability.StandardObserver
}

// WebServer represents the web server instance
type WebServer struct {
	cfg       config.WebConfig
	scanner   *core.Scanner
	audit     *guardian.Log
	stats     *performance.Stats
	metrics   *monitoring.Metrics
	health    *monitoring.HealthChecker
	observer  *observability.StandardObserver
	limiter   *ipRateLimiter
	maxUpload int64
	startTime time.Time
	out       io.Writer

	sentryEnabled bool
	server        *http.Server
}

// NewWebServer wires the server. A configured Sentry DSN is initialised here.
func NewWebServer(cfg config.WebConfig, deps Dependencies) (*WebServer, error) {
	if deps.Scanner == nil {
		return nil, resilience.NewInvalidInputError("create web server", "a scanner is required")
	}

	ws := &WebServer{
		cfg:       cfg,
		scanner:   deps.Scanner,
		audit:     deps.Audit,
		stats:     deps.Stats,
		metrics:   deps.Metrics,
		health:    deps.Health,
		observer:  deps.Observer,
		maxUpload: MaxUploadBytes,
		startTime: time.Now(),
		out:       os.Stdout,
	}
	if ws.audit == nil {
		ws.audit = guardian.NewLog(cfg.AuditCapacity)
	}
	if ws.stats == nil {
		ws.stats = performance.NewStats()
		ws.scanner.AddRecorders(ws.stats)
	}
	if ws.metrics == nil {
		ws.metrics = monitoring.NewMetrics()
		ws.scanner.AddRecorders(ws.metrics)
	}
	if ws.health == nil {
		ws.health = monitoring.NewHealthChecker(ws.scanner.Engine(), ws.observer)
	}
	if limit := ws.scanner.Router().Manager().MaxFileBytes(); limit > 0 {
		ws.maxUpload = limit
	}
	if cfg.RateLimitPerSecond > 0 {
		ws.limiter = newIPRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: "bias-scan@" + version.Short(),
		})
		if err != nil {
			return nil, resilience.NewInvalidInputError("initialise sentry", err.Error())
		}
		ws.sentryEnabled = true
	}
	return ws, nil
}

// Audit returns the audit log
func (ws *WebServer) Audit() *guardian.Log {
	return ws.audit
}

// Handler returns the complete middleware-wrapped router
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	ws.route(mux, "GET /{$}", ws.serveHome)
	ws.route(mux, "GET /health", ws.handleHealth)
	ws.route(mux, "POST /api/analyze", ws.handleAnalyze)
	ws.route(mux, "POST /api/upload", ws.handleUpload)
	ws.route(mux, "POST /api/generate-bias-free", ws.handleGenerateBiasFree)
	ws.route(mux, "POST /api/export", ws.handleExport)
	ws.route(mux, "GET /api/formats", ws.handleFormats)
	ws.route(mux, "GET /api/guardian/logs", ws.handleGuardianList)
	ws.route(mux, "POST /api/guardian/logs", ws.handleGuardianCreate)
	ws.route(mux, "DELETE /api/guardian/logs", ws.handleGuardianClear)
	ws.route(mux, "GET /api/guardian/logs/{id}", ws.handleGuardianGet)
	ws.route(mux, "POST /api/guardian/check-action", ws.handleGuardianCheckAction)
	ws.route(mux, "GET /api/guardian/stats", ws.handleGuardianStats)
	ws.route(mux, "GET /api/stats", ws.handleStats)
	mux.Handle("GET /metrics", ws.metrics.Handler())

	return ws.recoverPanics(ws.rateLimit(mux))
}

func (ws *WebServer) route(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, ws.metrics.Middleware(pattern, handler))
}

// Start listens on the configured port, falling back to the next free port,
// and serves until ctx is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	port := ws.cfg.Port
	if port <= 0 {
		port = 8080
	}

	var listener net.Listener
	var lastError error
	for i := 0; i < portAttempts; i++ {
		l, err := net.Listen("tcp", fmt.Sprintf(":%d", port+i))
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Fprintf(ws.out, "Port %d is not available, trying alternative ports...\n", port)
			}
			continue
		}
		listener = l
		port += i
		break
	}
	if listener == nil {
		return fmt.Errorf("could not find an available port in range %d-%d: %w", ws.cfg.Port, ws.cfg.Port+portAttempts-1, lastError)
	}

	ws.server = ws.createSecureServer(ws.Handler())
	fmt.Fprintf(ws.out, "bias-scan web UI started on port %d\n", port)
	fmt.Fprintf(ws.out, "Local: http://localhost:%d\n", port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return ws.Stop()
	}
}

// Stop gracefully shuts the server down and flushes pending Sentry events
func (ws *WebServer) Stop() error {
	if ws.sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
	if ws.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return ws.server.Shutdown(ctx)
}

func (ws *WebServer) createSecureServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler: handler,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 30 * time.Second,
		// Timeout for writing response
		WriteTimeout: 30 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
		// Limit header size
		MaxHeaderBytes: 1 << 20,
	}
}

func (ws *WebServer) serveHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Version        string
		LibraryVersion string
		MaxUploadMB    int64
	}{
		Version:        version.Short(),
		LibraryVersion: ws.scanner.Engine().Library().Version(),
		MaxUploadMB:    ws.maxUpload / (1 << 20),
	}
	if err := homeTemplate.Execute(w, data); err != nil {
		ws.observer.LogError("web", "render_home", r.URL.Path, err)
	}
}
