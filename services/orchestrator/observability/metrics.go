// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the QA service.
//
// # Description
//
// Counters, histograms, and gauges covering the QA pipeline:
//   - tracker operations (issues created, fetched, errors by code)
//   - test case and dataset generation
//   - automation runs (started, completed by mode and outcome, duration,
//     active-run gauge)
//
// Metrics are exposed via the /metrics endpoint for Prometheus + Grafana.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aleutianqa"

// Subsystem for QA pipeline metrics
const pipelineSubsystem = "pipeline"

// QAMetrics holds all Prometheus metrics for the QA pipeline.
//
// # Description
//
// Initialize once at startup via InitMetrics(). Handlers read the
// singleton through DefaultMetrics and must tolerate a nil value so the
// service can run with metrics disabled.
//
// # Thread Safety
//
// All operations are thread-safe.
type QAMetrics struct {
	// RunsStartedTotal counts automation runs admitted by the runner.
	// Recorded at run end, when the mode label is known.
	// Labels: mode (real, demo)
	RunsStartedTotal *prometheus.CounterVec

	// RunsCompletedTotal counts finished runs by mode and outcome.
	// Labels: mode (real, demo), outcome (success, failure)
	RunsCompletedTotal *prometheus.CounterVec

	// RunDurationSeconds measures wall-clock run duration.
	// Labels: mode (real, demo)
	RunDurationSeconds *prometheus.HistogramVec

	// ActiveRuns tracks whether an automation run is in flight (0 or 1).
	ActiveRuns prometheus.Gauge

	// IssuesCreatedTotal counts tracker issues created through the API.
	IssuesCreatedTotal prometheus.Counter

	// IssueFetchesTotal counts tracker issue fetches.
	IssueFetchesTotal prometheus.Counter

	// TestCasesGeneratedTotal counts generated manual test cases.
	TestCasesGeneratedTotal prometheus.Counter

	// DatasetsGeneratedTotal counts synthetic datasets generated.
	DatasetsGeneratedTotal prometheus.Counter

	// TrackerErrorsTotal counts tracker client failures.
	// Labels: operation (create, fetch, issue_types), and a coarse code
	// (error string class, not the raw message).
	TrackerErrorsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of QAMetrics.
// Initialized by InitMetrics(); nil when metrics are disabled.
var DefaultMetrics *QAMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Call once at startup;
// promauto panics on duplicate registration.
//
// # Outputs
//
//   - *QAMetrics: The initialized metrics instance.
func InitMetrics() *QAMetrics {
	DefaultMetrics = &QAMetrics{
		RunsStartedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "runs_started_total",
				Help:      "Total automation runs admitted by the runner",
			},
			[]string{"mode"},
		),

		RunsCompletedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "runs_completed_total",
				Help:      "Total finished automation runs by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		RunDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock automation run duration in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		),

		ActiveRuns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "active_runs",
				Help:      "Automation runs currently in flight",
			},
		),

		IssuesCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "issues_created_total",
				Help:      "Total tracker issues created",
			},
		),

		IssueFetchesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "issue_fetches_total",
				Help:      "Total tracker issue fetches",
			},
		),

		TestCasesGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "test_cases_generated_total",
				Help:      "Total manual test cases generated",
			},
		),

		DatasetsGeneratedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "datasets_generated_total",
				Help:      "Total synthetic datasets generated",
			},
		),

		TrackerErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "tracker_errors_total",
				Help:      "Total tracker client failures by operation and code",
			},
			[]string{"operation", "code"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode is a coarse failure class for tracker error metrics.
type ErrorCode string

const (
	// ErrorCodeUnconfigured indicates the tracker client is not configured.
	ErrorCodeUnconfigured ErrorCode = "unconfigured"

	// ErrorCodeRequest indicates a tracker API call failed.
	ErrorCodeRequest ErrorCode = "request"

	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RunLaunched marks a run admitted and in flight.
//
// The runner calls this at admission, before the run mode (real vs
// demo) is known; the mode-labeled counters are recorded by
// RunFinished. Together with RunFinished this keeps ActiveRuns
// balanced even when nobody polls the result.
func (m *QAMetrics) RunLaunched() {
	m.ActiveRuns.Inc()
}

// RunFinished records a terminal run and releases the active gauge.
//
// # Inputs
//
//   - mode: "real" or "demo"; empty when the run failed before an
//     agent was picked (recorded as "unknown").
//   - success: Whether the run produced a successful result.
//   - seconds: Wall-clock duration of the run.
func (m *QAMetrics) RunFinished(mode string, success bool, seconds float64) {
	if mode == "" {
		mode = "unknown"
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.RunsStartedTotal.WithLabelValues(mode).Inc()
	m.RunsCompletedTotal.WithLabelValues(mode, outcome).Inc()
	m.RunDurationSeconds.WithLabelValues(mode).Observe(seconds)
	m.ActiveRuns.Dec()
}

// RecordIssueCreated increments the created-issue counter.
func (m *QAMetrics) RecordIssueCreated() {
	m.IssuesCreatedTotal.Inc()
}

// RecordIssueFetched increments the issue-fetch counter.
func (m *QAMetrics) RecordIssueFetched() {
	m.IssueFetchesTotal.Inc()
}

// RecordTestCaseGenerated increments the test-case counter.
func (m *QAMetrics) RecordTestCaseGenerated() {
	m.TestCasesGeneratedTotal.Inc()
}

// RecordDatasetGenerated increments the dataset counter.
func (m *QAMetrics) RecordDatasetGenerated() {
	m.DatasetsGeneratedTotal.Inc()
}

// RecordTrackerError records a tracker client failure.
func (m *QAMetrics) RecordTrackerError(operation string, code ErrorCode) {
	m.TrackerErrorsTotal.WithLabelValues(operation, string(code)).Inc()
}
