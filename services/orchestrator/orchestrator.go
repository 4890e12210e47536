// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator provides the core orchestrator service for AleutianQA.
//
// This package contains the main service type that coordinates all
// components of the tool: HTTP routing, the JIRA tracker client, the
// test case generator, the dataset registry, the automation runner, and
// observability infrastructure.
//
// # Enterprise Integration
//
// The orchestrator supports dependency injection via extensions.ServiceOptions,
// enabling enterprise deployments to provide custom implementations of:
//   - AuthProvider: Custom authentication (JWT, API keys)
//   - AuthzProvider: Role-based access control
//   - AuditLogger: Compliance audit logging
//
// # Usage
//
// Open source (uses no-op defaults):
//
//	cfg := orchestrator.Config{Port: 12310}
//	svc, err := orchestrator.New(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Run()
//
// Enterprise (with custom implementations):
//
//	opts := &extensions.ServiceOptions{
//	    AuthProvider: enterpriseAuth,
//	    AuditLogger:  enterpriseAudit,
//	}
//	svc, err := orchestrator.New(cfg, opts)
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianQA/pkg/extensions"
	"github.com/AleutianAI/AleutianQA/services/automation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/routes"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service defines the contract for the orchestrator service.
//
// # Description
//
// Service abstracts the orchestrator lifecycle, enabling testing and
// alternative implementations. Only essential lifecycle methods are
// exposed.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use. Run() blocks and
// should only be called once per instance.
type Service interface {
	// Run starts the HTTP server and blocks until shutdown or error.
	Run() error

	// Router returns the underlying Gin engine for testing.
	// Callers must not modify the router after construction.
	Router() *gin.Engine
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds orchestrator configuration options.
//
// All fields are optional; New() applies defaults for zero values.
// Values are typically populated from environment variables by the
// entry point, or programmatically in tests.
type Config struct {
	// Port is the HTTP server port. Default: 12310
	Port int

	// GinMode sets the Gin framework mode.
	// Valid values: "debug", "release", "test"
	// Default: uses GIN_MODE env var or "debug"
	GinMode string

	// OTelEndpoint is the OpenTelemetry collector endpoint.
	// Tracing is skipped when empty.
	OTelEndpoint string

	// EnableMetrics exposes Prometheus metrics at /metrics.
	// Default: true
	EnableMetrics bool

	// ReportRoot is the directory automation run reports land in.
	// Default: "automation_reports"
	ReportRoot string

	// DatasetDir is watched for CSV dataset files. The watcher loads
	// existing files on start and picks up edits live.
	// Default: "test_data"
	DatasetDir string

	// DumpDir receives timestamped JSON dataset dumps.
	// Default: DatasetDir
	DumpDir string

	// ScriptDir receives emitted Playwright-style test scripts.
	// Default: "test_scripts"
	ScriptDir string

	// TestCaseDir receives saved TestCase_<key>.txt files.
	// Default: "test_cases"
	TestCaseDir string

	// HistoryDir is the badger directory for run history. When empty
	// and InMemoryHistory is false, defaults to "run_history".
	HistoryDir string

	// InMemoryHistory keeps run history in memory only. Used by tests
	// and the demo flow.
	InMemoryHistory bool

	// UIDir is served statically under /ui when non-empty.
	UIDir string

	// GCSBucket enables report archival to Google Cloud Storage.
	// GCSKeyPath names the service account key file.
	GCSBucket  string
	GCSKeyPath string

	// Influx settings enable run analytics. All four must be set.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// =============================================================================
// Implementation
// =============================================================================

// service implements Service for production use.
//
// All fields are read-only after New() returns; the runner and store
// manage their own synchronization internally.
type service struct {
	config Config
	opts   extensions.ServiceOptions
	router *gin.Engine

	trackerClient tracker.Client
	generator     *testgen.Generator
	store         *datagen.Store
	watcher       *datagen.Watcher
	history       *automation.History
	archiver      *automation.Archiver
	analytics     *automation.Analytics
	runner        *automation.Runner

	tracerCleanup func(context.Context)
}

// =============================================================================
// Constructor
// =============================================================================

// New creates a new orchestrator Service with the given configuration.
//
// # Description
//
// New initializes all orchestrator components:
//  1. Applies default configuration for missing values
//  2. Initializes OpenTelemetry tracing (when an endpoint is set)
//  3. Initializes Prometheus metrics
//  4. Builds the tracker client from environment credentials
//  5. Loads the test case generator and its category catalog
//  6. Starts the dataset registry and its filesystem watcher
//  7. Opens run history and optional archive/analytics sinks
//  8. Builds the automation runner
//  9. Sets up HTTP routes with extension options
//
// If opts is nil, DefaultOptions() is used (no-op implementations).
//
// Missing JIRA credentials are not fatal: the tracker endpoints answer
// 503 and everything else keeps working. The same applies to the
// optional GCS and InfluxDB sinks.
func New(cfg Config, opts *extensions.ServiceOptions) (Service, error) {
	s := &service{
		config: applyConfigDefaults(cfg),
	}

	// Apply extension options (use defaults if nil)
	if opts != nil {
		s.opts = *opts
	} else {
		s.opts = extensions.DefaultOptions()
	}

	// Initialize OpenTelemetry tracer
	if s.config.OTelEndpoint != "" {
		cleanup, err := s.initTracer()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	// Initialize Prometheus metrics
	if s.config.EnableMetrics {
		observability.InitMetrics()
		slog.Info("Initialized Prometheus metrics")
	}

	// Tracker client (optional)
	s.initTracker()

	// Test case generator
	gen, err := testgen.NewGenerator()
	if err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to load test case generator: %w", err)
	}
	s.generator = gen

	// Dataset registry and watcher
	if err := s.initDatasets(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to initialize dataset registry: %w", err)
	}

	// Run history
	if err := s.initHistory(); err != nil {
		s.cleanup()
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}

	// Optional sinks
	s.initArchiver()
	s.initAnalytics()

	// Automation runner
	// A typed-nil *QAMetrics must not end up in the interface field.
	var sink automation.MetricsSink
	if m := observability.DefaultMetrics; m != nil {
		sink = m
	}

	s.runner = automation.NewRunner(automation.Config{
		ReportRoot: s.config.ReportRoot,
		Store:      s.store,
		History:    s.history,
		Archiver:   s.archiver,
		Analytics:  s.analytics,
		Metrics:    sink,
	})

	// Setup HTTP router
	s.initRouter()

	return s, nil
}

// =============================================================================
// Service Interface Methods
// =============================================================================

// Run starts the HTTP server and blocks until shutdown or error.
// Cleanup is automatic on return.
func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("Starting orchestrator server", "port", s.config.Port)

	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in missing configuration values.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = 12310
	}
	if cfg.ReportRoot == "" {
		cfg.ReportRoot = "automation_reports"
	}
	if cfg.DatasetDir == "" {
		cfg.DatasetDir = "test_data"
	}
	if cfg.DumpDir == "" {
		cfg.DumpDir = cfg.DatasetDir
	}
	if cfg.ScriptDir == "" {
		cfg.ScriptDir = "test_scripts"
	}
	if cfg.TestCaseDir == "" {
		cfg.TestCaseDir = "test_cases"
	}
	if cfg.HistoryDir == "" && !cfg.InMemoryHistory {
		cfg.HistoryDir = "run_history"
	}
	return cfg
}

// initTracer initializes OpenTelemetry distributed tracing.
//
// Sets up an OTLP trace exporter over an insecure gRPC connection,
// appropriate for internal networks where the collector is local.
func (s *service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("aleutianqa-orchestrator")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}

	return cleanup, nil
}

// initTracker builds the JIRA client from environment credentials.
// Missing credentials leave the client nil; the tracker endpoints
// answer 503 until the environment is fixed and the service restarted.
func (s *service) initTracker() {
	creds := tracker.CredentialsFromEnv()
	client, err := tracker.NewJiraClient(creds)
	if err != nil {
		slog.Warn("Tracker not configured, issue endpoints disabled",
			"error", err)
		return
	}
	s.trackerClient = client
	slog.Info("Tracker client initialized", "base_url", creds.BaseURL)
}

// initDatasets creates the dataset registry and starts the filesystem
// watcher over the dataset directory.
func (s *service) initDatasets() error {
	s.store = datagen.NewStore()

	watcher, err := datagen.NewWatcher(s.config.DatasetDir, s.store, nil)
	if err != nil {
		return err
	}
	if err := watcher.Start(context.Background()); err != nil {
		return err
	}
	s.watcher = watcher

	slog.Info("Dataset watcher started", "dir", s.config.DatasetDir)
	return nil
}

// initHistory opens the run history store.
func (s *service) initHistory() error {
	cfg := automation.DefaultHistoryConfig(s.config.HistoryDir)
	if s.config.InMemoryHistory {
		cfg = automation.InMemoryHistoryConfig()
	}

	history, err := automation.OpenHistory(cfg)
	if err != nil {
		return err
	}
	s.history = history
	return nil
}

// initArchiver wires the GCS report archiver when a bucket is set.
// Failures are not fatal; runs simply skip archival.
func (s *service) initArchiver() {
	if s.config.GCSBucket == "" {
		return
	}

	archiver, err := automation.NewArchiver(context.Background(),
		s.config.GCSBucket, s.config.GCSKeyPath)
	if err != nil {
		slog.Warn("Report archival disabled", "bucket", s.config.GCSBucket, "error", err)
		return
	}
	s.archiver = archiver
	slog.Info("Report archival enabled", "bucket", s.config.GCSBucket)
}

// initAnalytics wires the InfluxDB run analytics sink when configured.
// Failures are not fatal; runs simply skip the measurement write.
func (s *service) initAnalytics() {
	if s.config.InfluxURL == "" {
		return
	}

	analytics, err := automation.NewAnalytics(s.config.InfluxURL,
		s.config.InfluxToken, s.config.InfluxOrg, s.config.InfluxBucket)
	if err != nil {
		slog.Warn("Run analytics disabled", "url", s.config.InfluxURL, "error", err)
		return
	}
	s.analytics = analytics
	slog.Info("Run analytics enabled", "url", s.config.InfluxURL)
}

// initRouter sets up the Gin HTTP router with all routes.
func (s *service) initRouter() {
	if s.config.GinMode != "" {
		gin.SetMode(s.config.GinMode)
	}

	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("aleutianqa-orchestrator"))

	routes.SetupRoutes(s.router, routes.Deps{
		Tracker:       s.trackerClient,
		Generator:     s.generator,
		Store:         s.store,
		DumpDir:       s.config.DumpDir,
		ScriptDir:     s.config.ScriptDir,
		TestCaseDir:   s.config.TestCaseDir,
		Runner:        s.runner,
		History:       s.history,
		ReportRoot:    s.config.ReportRoot,
		UIDir:         s.config.UIDir,
		EnableMetrics: s.config.EnableMetrics,
		Opts:          s.opts,
	})
}

// cleanup releases all resources held by the service.
// Called when Run() exits or on initialization failure.
func (s *service) cleanup() {
	if s.watcher != nil {
		s.watcher.Stop()
	}

	if s.history != nil {
		if err := s.history.Close(); err != nil {
			slog.Warn("Run history close error", "error", err)
		}
	}

	if s.archiver != nil {
		if err := s.archiver.Close(); err != nil {
			slog.Warn("Archiver close error", "error", err)
		}
	}

	if s.analytics != nil {
		s.analytics.Close()
	}

	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}

// =============================================================================
// Compile-time Interface Compliance
// =============================================================================

var _ Service = (*service)(nil)
