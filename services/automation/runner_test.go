// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package automation

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianQA/services/agent"
	"github.com/AleutianAI/AleutianQA/services/datagen"
)

const loginTestCase = `=== Manual Test Case ===

Test Case ID: TC_QA-7
Title: User Login

Test Steps:
  1. Navigate to the login page.
  2. Enter the email into the form.
  3. Enter the password into the form.
  4. Click the submit button.

Expected Result:
  The system should behave as described.
`

// scriptedAgent is a canned Agent for driving the runner in tests.
type scriptedAgent struct {
	lines  []string
	output string
	err    error
	block  chan struct{}
	task   agent.Task
}

func (s *scriptedAgent) Run(ctx context.Context, task agent.Task, status agent.StatusFunc) (string, error) {
	s.task = task
	for _, line := range s.lines {
		if status != nil {
			status(line)
		}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()

	if cfg.ReportRoot == "" {
		cfg.ReportRoot = t.TempDir()
	}
	if cfg.History == nil {
		history, err := OpenHistory(InMemoryHistoryConfig())
		if err != nil {
			t.Fatalf("OpenHistory failed: %v", err)
		}
		t.Cleanup(func() { history.Close() })
		cfg.History = history
	}

	r := NewRunner(cfg)
	r.refiner = nil
	r.newRealAgent = func() (agent.Agent, error) {
		return nil, errors.New("agent not configured")
	}
	return r
}

func baseRequest() RunRequest {
	return RunRequest{
		IssueKey:     "QA-7",
		FeatureTitle: "User Login",
		TestCase:     loginTestCase,
		TargetURL:    "https://app.example.com",
		Headless:     true,
	}
}

func waitForResult(t *testing.T, r *Runner) *RunResult {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if result, ok := r.PollResult(); ok {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for a run result")
	return nil
}

func drainStatus(r *Runner) []string {
	var lines []string
	for {
		line, ok := r.PollStatus()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}

func containsPrefix(lines []string, prefix string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// ============================================================================
// Launch Tests
// ============================================================================

func TestLaunch_DemoModeHappyPath(t *testing.T) {
	demo := &scriptedAgent{lines: []string{"Navigating to target URL...", "Test execution completed!"}, output: "demo output"}
	r := newTestRunner(t, Config{})
	r.demoAgent = demo

	runID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Launch was rejected with no active run")
	}
	if runID == "" {
		t.Fatal("Launch returned an empty run ID")
	}

	result := waitForResult(t, r)
	if result.ID != runID {
		t.Errorf("Result ID = %q, want %q", result.ID, runID)
	}
	if !result.Success {
		t.Fatalf("Run failed: %s", result.Error)
	}
	if result.Mode != ModeDemo {
		t.Errorf("Mode = %q, want demo", result.Mode)
	}
	if result.Output != "demo output" {
		t.Errorf("Output = %q, want the agent output", result.Output)
	}
	if result.Duration <= 0 {
		t.Error("Expected a positive run duration")
	}

	lines := drainStatus(r)
	if len(lines) == 0 || lines[0] != "Initializing browser automation..." {
		t.Errorf("First status = %v, want the initialization line", lines)
	}
	if !containsPrefix(lines, "Created report directory: test_automation_") {
		t.Errorf("Missing report directory status in %v", lines)
	}
	if !containsLine(lines, "Browser automation not available, running in demo mode") {
		t.Errorf("Missing demo fallback status in %v", lines)
	}
	if !containsLine(lines, "Navigating to target URL...") {
		t.Errorf("Missing forwarded agent status in %v", lines)
	}
	if !containsLine(lines, "Generating test report...") {
		t.Errorf("Missing report status in %v", lines)
	}

	if r.State() != StateCompleted {
		t.Errorf("State = %q, want completed", r.State())
	}
}

func TestLaunch_WritesRunArtifacts(t *testing.T) {
	demo := &scriptedAgent{output: "demo output"}
	r := newTestRunner(t, Config{})
	r.demoAgent = demo

	runID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if result.ReportDir == "" {
		t.Fatal("Result missing the report directory")
	}
	if _, err := os.Stat(result.ReportDir); err != nil {
		t.Fatalf("Report directory missing: %v", err)
	}

	doc, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("Report document missing: %v", err)
	}
	if !strings.Contains(string(doc), "DEMO MODE") {
		t.Error("Report document missing the demo badge")
	}

	task, err := os.ReadFile(filepath.Join(result.ReportDir, "task.txt"))
	if err != nil {
		t.Fatalf("Task artifact missing: %v", err)
	}
	if !strings.Contains(string(task), "execute the following test steps for feature: User Login") {
		t.Errorf("task.txt missing the instructions, got %q", string(task))
	}

	blob, err := os.ReadFile(filepath.Join(result.ReportDir, "result.json"))
	if err != nil {
		t.Fatalf("Result artifact missing: %v", err)
	}
	var stored RunResult
	if err := json.Unmarshal(blob, &stored); err != nil {
		t.Fatalf("result.json does not parse: %v", err)
	}
	if stored.ID != runID || !stored.Success {
		t.Errorf("result.json mismatch: %+v", stored)
	}
}

func TestLaunch_RealMode(t *testing.T) {
	real := &scriptedAgent{lines: []string{"Session started"}, output: "agent output"}
	r := newTestRunner(t, Config{})
	r.newRealAgent = func() (agent.Agent, error) { return real, nil }

	_, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if result.Mode != ModeReal {
		t.Errorf("Mode = %q, want real", result.Mode)
	}
	if result.Output != "agent output" {
		t.Errorf("Output = %q, want the agent output", result.Output)
	}

	lines := drainStatus(r)
	for _, want := range []string{
		"Browser automation agent connected",
		"Setting up AI agent...",
		"Starting browser (headless mode)...",
		"Executing test automation in background...",
		"Session started",
		"Test automation completed!",
	} {
		if !containsLine(lines, want) {
			t.Errorf("Missing status %q in %v", want, lines)
		}
	}

	doc, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("Report document missing: %v", err)
	}
	if !strings.Contains(string(doc), "REAL AUTOMATION") {
		t.Error("Report document missing the real-automation badge")
	}
}

func TestLaunch_VisibleBrowserStatusLines(t *testing.T) {
	real := &scriptedAgent{output: "ok"}
	r := newTestRunner(t, Config{})
	r.newRealAgent = func() (agent.Agent, error) { return real, nil }

	req := baseRequest()
	req.Headless = false

	if _, ok := r.Launch(req); !ok {
		t.Fatal("Launch was rejected")
	}
	waitForResult(t, r)

	lines := drainStatus(r)
	if !containsLine(lines, "Starting visible browser - watch your screen!") {
		t.Errorf("Missing visible-browser status in %v", lines)
	}
	if !containsLine(lines, "Executing test automation - you can watch the browser!") {
		t.Errorf("Missing visible execution status in %v", lines)
	}
	if real.task.Headless {
		t.Error("Agent task should not be headless")
	}
}

func TestLaunch_SingleRunGuard(t *testing.T) {
	demo := &scriptedAgent{output: "ok", block: make(chan struct{})}
	r := newTestRunner(t, Config{})
	r.demoAgent = demo

	if _, ok := r.Launch(baseRequest()); !ok {
		t.Fatal("First launch was rejected")
	}
	if _, ok := r.Launch(baseRequest()); ok {
		t.Fatal("Second launch should be rejected while a run is active")
	}
	if !r.Active() {
		t.Error("Active() should report the in-flight run")
	}

	close(demo.block)
	waitForResult(t, r)

	relaunched := false
	for i := 0; i < 200; i++ {
		if _, ok := r.Launch(baseRequest()); ok {
			relaunched = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !relaunched {
		t.Fatal("Expected a relaunch once the previous run finished")
	}
	waitForResult(t, r)
}

func TestLaunch_AgentFailure(t *testing.T) {
	demo := &scriptedAgent{err: errors.New("agent exploded")}
	history := newTestHistory(t)
	r := newTestRunner(t, Config{History: history})
	r.demoAgent = demo

	runID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if result.Success {
		t.Fatal("Expected a failed result")
	}
	if !strings.Contains(result.Error, "agent exploded") {
		t.Errorf("Error = %q, want the agent failure", result.Error)
	}
	if result.ReportPath != "" {
		t.Errorf("ReportPath = %q, want empty on failure", result.ReportPath)
	}
	if r.State() != StateFailed {
		t.Errorf("State = %q, want failed", r.State())
	}

	lines := drainStatus(r)
	if !containsPrefix(lines, "Error: agent exploded") {
		t.Errorf("Missing error status in %v", lines)
	}

	stored, err := history.GetRun(runID)
	if err != nil {
		t.Fatalf("Failed run missing from history: %v", err)
	}
	if stored.Success {
		t.Error("History entry should record the failure")
	}
}

func TestLaunch_RecordsHistory(t *testing.T) {
	history := newTestHistory(t)
	r := newTestRunner(t, Config{History: history})
	r.demoAgent = &scriptedAgent{output: "ok"}

	runID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	stored, err := history.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.Output != result.Output || stored.Mode != result.Mode {
		t.Errorf("History entry mismatch: %+v", stored)
	}
}

func TestLaunch_EmitsScriptWithDataset(t *testing.T) {
	store := datagen.NewStore()
	store.Put(datagen.Generate("users", 3, 42))

	r := newTestRunner(t, Config{Store: store})
	r.demoAgent = &scriptedAgent{output: "ok"}

	req := baseRequest()
	req.DatasetName = "users"

	if _, ok := r.Launch(req); !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if result.ScriptPath == "" {
		t.Fatal("Expected a script path with a dataset attached")
	}
	if filepath.Base(result.ScriptPath) != "TestScript_QA-7.spec.js" {
		t.Errorf("Script file = %q, want TestScript_QA-7.spec.js", filepath.Base(result.ScriptPath))
	}

	script, err := os.ReadFile(result.ScriptPath)
	if err != nil {
		t.Fatalf("Script missing: %v", err)
	}
	if !strings.Contains(string(script), "test.describe(") {
		t.Error("Script missing the describe block")
	}
}

func TestLaunch_SkipsScriptForUnknownDataset(t *testing.T) {
	r := newTestRunner(t, Config{Store: datagen.NewStore()})
	r.demoAgent = &scriptedAgent{output: "ok"}

	req := baseRequest()
	req.DatasetName = "missing"

	if _, ok := r.Launch(req); !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if !result.Success {
		t.Fatalf("Run should succeed without the dataset: %s", result.Error)
	}
	if result.ScriptPath != "" {
		t.Errorf("ScriptPath = %q, want empty for an unknown dataset", result.ScriptPath)
	}
}

// ============================================================================
// Queue Tests
// ============================================================================

func TestPollStatus_EmptyQueue(t *testing.T) {
	r := newTestRunner(t, Config{})

	if line, ok := r.PollStatus(); ok {
		t.Errorf("Expected an empty status queue, got %q", line)
	}
	if result, ok := r.PollResult(); ok {
		t.Errorf("Expected an empty result queue, got %+v", result)
	}
}

func TestStatusQueue_DropsWhenFull(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "status line"
	}
	r := newTestRunner(t, Config{})
	r.demoAgent = &scriptedAgent{lines: lines, output: "ok"}

	if _, ok := r.Launch(baseRequest()); !ok {
		t.Fatal("Launch was rejected")
	}
	result := waitForResult(t, r)

	if !result.Success {
		t.Fatalf("Run failed: %s", result.Error)
	}
	drained := drainStatus(r)
	if len(drained) != statusQueueCap {
		t.Errorf("Drained %d status lines, want the queue capacity %d", len(drained), statusQueueCap)
	}
}

func TestLaunch_DrainsStaleQueues(t *testing.T) {
	r := newTestRunner(t, Config{})
	r.demoAgent = &scriptedAgent{lines: []string{"agent line"}, output: "ok"}

	firstID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("First launch was rejected")
	}

	// Wait for the first run to finish without consuming its queues, so
	// its statuses and result are still buffered at relaunch time.
	for i := 0; r.Active() && i < 500; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if r.Active() {
		t.Fatal("Timed out waiting for the first run to finish")
	}

	secondID, ok := r.Launch(baseRequest())
	if !ok {
		t.Fatal("Relaunch was rejected")
	}
	second := waitForResult(t, r)

	if second.ID == firstID {
		t.Error("Received the stale first result after relaunch")
	}
	if second.ID != secondID {
		t.Errorf("Result ID = %q, want %q", second.ID, secondID)
	}

	lines := drainStatus(r)
	if len(lines) == 0 || lines[0] != "Initializing browser automation..." {
		t.Fatalf("First status of the second run = %v", lines)
	}
	initCount := 0
	agentCount := 0
	for _, line := range lines {
		if line == "Initializing browser automation..." {
			initCount++
		}
		if line == "agent line" {
			agentCount++
		}
	}
	if initCount != 1 || agentCount != 1 {
		t.Errorf("Stale statuses leaked: %d init lines, %d agent lines", initCount, agentCount)
	}
}

// recordingSink captures run accounting for assertions.
type recordingSink struct {
	mu       sync.Mutex
	launched int
	finished []string
	done     chan struct{}
}

func (s *recordingSink) RunLaunched() {
	s.mu.Lock()
	s.launched++
	s.mu.Unlock()
}

func (s *recordingSink) RunFinished(mode string, success bool, seconds float64) {
	s.mu.Lock()
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	s.finished = append(s.finished, mode+"/"+outcome)
	s.mu.Unlock()
	s.done <- struct{}{}
}

func (s *recordingSink) snapshot() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launched, append([]string(nil), s.finished...)
}

func TestLaunch_AccountsAbandonedRuns(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{}, 2)}
	r := newTestRunner(t, Config{Metrics: sink})
	r.demoAgent = &scriptedAgent{output: "ok"}

	// First run: finish it without ever polling the result, as a closed
	// UI tab would.
	if _, ok := r.Launch(baseRequest()); !ok {
		t.Fatal("First launch was rejected")
	}
	select {
	case <-sink.done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for the first run to be accounted")
	}

	for i := 0; r.Active() && i < 500; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if r.Active() {
		t.Fatal("Timed out waiting for the first run to release the guard")
	}

	// Relaunch discards the stale, unread result; the accounting must
	// already be balanced at this point.
	if _, ok := r.Launch(baseRequest()); !ok {
		t.Fatal("Relaunch was rejected")
	}
	select {
	case <-sink.done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for the second run to be accounted")
	}

	launched, finished := sink.snapshot()
	if launched != 2 {
		t.Errorf("RunLaunched calls = %d, want 2", launched)
	}
	if len(finished) != 2 {
		t.Fatalf("RunFinished calls = %d, want 2 (abandoned runs must still be recorded)", len(finished))
	}
	for _, f := range finished {
		if f != "demo/success" {
			t.Errorf("Recorded run = %q, want %q", f, "demo/success")
		}
	}
}

func TestLaunch_AccountsFailedRunBeforeAgentPick(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{}, 1)}
	r := newTestRunner(t, Config{ReportRoot: filepath.Join(t.TempDir(), "missing", "\x00bad"), Metrics: sink})
	r.demoAgent = &scriptedAgent{output: "ok"}

	if _, ok := r.Launch(baseRequest()); !ok {
		t.Fatal("Launch was rejected")
	}
	select {
	case <-sink.done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timed out waiting for the failed run to be accounted")
	}

	_, finished := sink.snapshot()
	if len(finished) != 1 || finished[0] != "/failure" {
		t.Errorf("Recorded runs = %v, want one failure with no mode", finished)
	}
}
