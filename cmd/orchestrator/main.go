// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command orchestrator starts the AleutianQA orchestrator HTTP server.
//
// This is the main entry point for the containerized orchestrator
// service. It reads configuration from environment variables and starts
// the server. The aleutianqa CLI's serve command wraps the same service
// for local use.
//
// # Environment Variables
//
//   - QA_PORT: HTTP server port (default: 12310)
//   - QA_REPORT_DIR: automation report root (default: automation_reports)
//   - QA_DATASET_DIR: watched CSV dataset directory (default: test_data)
//   - QA_SCRIPT_DIR: emitted test script directory (default: test_scripts)
//   - QA_TESTCASE_DIR: saved test case directory (default: test_cases)
//   - QA_HISTORY_DIR: run history directory (default: run_history)
//   - QA_UI_DIR: static UI directory served at /ui (default: ./ui)
//   - QA_LOG_DIR: also write JSON logs to this directory (optional)
//   - QA_GCS_BUCKET / QA_GCS_KEY_PATH: report archival to GCS (optional)
//   - QA_INFLUX_URL / QA_INFLUX_TOKEN / QA_INFLUX_ORG / QA_INFLUX_BUCKET:
//     run analytics (optional)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional)
//   - jira_base_url / jira_email / jira_api_token: tracker credentials
//   - BROWSERCLARK_URL / BROWSERCLARK_API_KEY: real browser agent
//   - DEEPSEEK_API_KEY: task refinement (optional)
//
// # Usage
//
//	# Build
//	go build -o orchestrator ./cmd/orchestrator
//
//	# Run
//	./orchestrator
//
//	# Or via container
//	podman-compose up orchestrator
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/AleutianAI/AleutianQA/pkg/logging"
	"github.com/AleutianAI/AleutianQA/services/orchestrator"
)

func main() {
	// Setup structured logging
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  os.Getenv("QA_LOG_DIR"),
		Service: "orchestrator",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := orchestrator.Config{
		Port:          getEnvInt("QA_PORT", 12310),
		OTelEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		EnableMetrics: getEnvBool("QA_ENABLE_METRICS", true),
		ReportRoot:    getEnvString("QA_REPORT_DIR", "automation_reports"),
		DatasetDir:    getEnvString("QA_DATASET_DIR", "test_data"),
		ScriptDir:     getEnvString("QA_SCRIPT_DIR", "test_scripts"),
		TestCaseDir:   getEnvString("QA_TESTCASE_DIR", "test_cases"),
		HistoryDir:    getEnvString("QA_HISTORY_DIR", "run_history"),
		UIDir:         getEnvString("QA_UI_DIR", "./ui"),
		GCSBucket:     os.Getenv("QA_GCS_BUCKET"),
		GCSKeyPath:    os.Getenv("QA_GCS_KEY_PATH"),
		InfluxURL:     os.Getenv("QA_INFLUX_URL"),
		InfluxToken:   os.Getenv("QA_INFLUX_TOKEN"),
		InfluxOrg:     os.Getenv("QA_INFLUX_ORG"),
		InfluxBucket:  os.Getenv("QA_INFLUX_BUCKET"),
	}

	slog.Info("Starting orchestrator",
		"port", cfg.Port,
		"report_dir", cfg.ReportRoot,
		"dataset_dir", cfg.DatasetDir,
	)

	// Create orchestrator with default (no-op) extension options
	// Enterprise builds will pass custom ServiceOptions here
	svc, err := orchestrator.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Orchestrator error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
