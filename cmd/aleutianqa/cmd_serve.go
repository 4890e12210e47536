// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/services/orchestrator"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	servePort    int    // HTTP port
	serveUIDir   string // Static UI directory
	serveNoOTel  bool   // Skip the OTLP trace exporter
	serveHistory string // Run history directory
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"HTTP port (default: config.yaml, QA_PORT, or 12310)")
	serveCmd.Flags().StringVar(&serveUIDir, "ui", "./ui",
		"Static UI directory served at /ui")
	serveCmd.Flags().BoolVar(&serveNoOTel, "no-otel", false,
		"Skip the OpenTelemetry trace exporter even when the endpoint is set")
	serveCmd.Flags().StringVar(&serveHistory, "history-dir", "",
		"Run history directory (default: QA_HISTORY_DIR or run_history)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runServe builds and runs the orchestrator service in the foreground.
//
// Flags win over config.yaml, which wins over environment variables.
func runServe(cmd *cobra.Command, args []string) {
	port := servePort
	if port == 0 {
		port = config.Port
	}
	if port == 0 {
		if v, err := strconv.Atoi(os.Getenv("QA_PORT")); err == nil {
			port = v
		}
	}

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if serveNoOTel {
		otelEndpoint = ""
	}

	cfg := orchestrator.Config{
		Port:          port,
		OTelEndpoint:  otelEndpoint,
		EnableMetrics: true,
		ReportRoot:    firstNonEmpty(config.ReportDir, os.Getenv("QA_REPORT_DIR")),
		DatasetDir:    firstNonEmpty(config.DatasetDir, os.Getenv("QA_DATASET_DIR")),
		ScriptDir:     firstNonEmpty(config.ScriptDir, os.Getenv("QA_SCRIPT_DIR")),
		TestCaseDir:   firstNonEmpty(config.TestCaseDir, os.Getenv("QA_TESTCASE_DIR")),
		HistoryDir:    firstNonEmpty(serveHistory, os.Getenv("QA_HISTORY_DIR")),
		UIDir:         serveUIDir,
		GCSBucket:     os.Getenv("QA_GCS_BUCKET"),
		GCSKeyPath:    os.Getenv("QA_GCS_KEY_PATH"),
		InfluxURL:     os.Getenv("QA_INFLUX_URL"),
		InfluxToken:   os.Getenv("QA_INFLUX_TOKEN"),
		InfluxOrg:     os.Getenv("QA_INFLUX_ORG"),
		InfluxBucket:  os.Getenv("QA_INFLUX_BUCKET"),
	}

	svc, err := orchestrator.New(cfg, nil)
	if err != nil {
		ux.Error("Failed to start the orchestrator: " + err.Error())
		os.Exit(1)
	}

	ux.Title("AleutianQA orchestrator")
	ux.Info("Serving on http://localhost:" + strconv.Itoa(defaultPort(port)))

	if err := svc.Run(); err != nil {
		ux.Error("Server stopped: " + err.Error())
		os.Exit(1)
	}
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// defaultPort substitutes the service default when unset.
func defaultPort(port int) int {
	if port == 0 {
		return 12310
	}
	return port
}
