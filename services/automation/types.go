// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package automation coordinates browser automation runs.
//
// One background goroutine executes a run end to end: it builds the
// agent task from a test case, drives the real or demo agent, renders
// the report artifacts, and records the outcome. Progress and results
// flow back through two buffered queues that the UI polls once a
// second.
//
// Thread Safety:
//
//	Runner is safe for concurrent use. At most one run is active at a
//	time; additional launches are rejected until the active run ends.
package automation

import "time"

// RunState represents a phase of an automation run.
type RunState string

const (
	// StatePending is set between launch and the worker picking up.
	StatePending RunState = "pending"

	// StateInitializing covers report directory and agent setup.
	StateInitializing RunState = "initializing"

	// StateRunning means the agent is executing the task.
	StateRunning RunState = "running"

	// StateReporting covers artifact rendering and archival.
	StateReporting RunState = "reporting"

	// StateCompleted indicates the run finished successfully.
	StateCompleted RunState = "completed"

	// StateFailed indicates the run ended with an error.
	StateFailed RunState = "failed"
)

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the state is a terminal state.
func (s RunState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Run modes reported in results and metrics.
const (
	ModeReal = "real"
	ModeDemo = "demo"
)

// RunRequest describes one automation run to launch.
type RunRequest struct {
	// IssueKey is the tracker issue the test case came from.
	IssueKey string `json:"issue_key"`

	// FeatureTitle names the feature under test.
	FeatureTitle string `json:"feature_title"`

	// TestCase is the manual test case content. Steps are extracted
	// from its Test Steps section; without any the agent falls back to
	// a general exploration task.
	TestCase string `json:"test_case"`

	// TargetURL is the application under test.
	TargetURL string `json:"target_url"`

	// Headless controls browser rendering for real runs.
	Headless bool `json:"headless"`

	// DatasetName optionally names a registered dataset used to emit a
	// replayable test script alongside the report.
	DatasetName string `json:"dataset_name,omitempty"`
}

// RunResult is the terminal outcome of one automation run.
type RunResult struct {
	ID         string        `json:"id"`
	Success    bool          `json:"success"`
	Mode       string        `json:"mode"`
	Output     string        `json:"output,omitempty"`
	ReportPath string        `json:"report_path,omitempty"`
	ReportDir  string        `json:"report_dir,omitempty"`
	ScriptPath string        `json:"script_path,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}
