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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianQA/services/agent"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/testgen/script"
)

const (
	defaultReportRoot = "automation_reports"

	statusQueueCap = 64
	resultQueueCap = 1
)

// taskRefiner tightens agent instructions before a real run.
type taskRefiner interface {
	RefineTask(ctx context.Context, task string) string
}

// MetricsSink receives run accounting from the runner. Implementations
// must be safe for concurrent use.
//
// Accounting lives here rather than at the HTTP layer so abandoned runs
// (result never polled, client gone) are still counted: RunFinished
// fires exactly once per admitted run, whether or not anyone reads the
// result.
type MetricsSink interface {
	// RunLaunched marks a run admitted and in flight.
	RunLaunched()

	// RunFinished records a terminal run with its mode, outcome, and
	// wall-clock duration in seconds.
	RunFinished(mode string, success bool, seconds float64)
}

// Config wires the runner's collaborators. Every field except
// ReportRoot is optional; nil sinks are skipped.
type Config struct {
	// ReportRoot is the directory run directories are created under.
	// Defaults to "automation_reports".
	ReportRoot string

	// Store resolves dataset names for script emission.
	Store *datagen.Store

	// History records terminal run results.
	History *History

	// Archiver uploads run directories after a successful report.
	Archiver *Archiver

	// Analytics records one measurement point per finished run.
	Analytics *Analytics

	// Metrics receives run accounting. Leave nil when metrics are
	// disabled.
	Metrics MetricsSink

	// AgentFactory overrides how the real browser agent is resolved.
	// Leave nil to resolve a BrowserClark client from the environment
	// on every launch.
	AgentFactory func() (agent.Agent, error)

	// DemoAgent overrides the fallback agent. Leave nil for the
	// standard demo cadence.
	DemoAgent agent.Agent
}

// Runner executes automation runs one at a time.
type Runner struct {
	reportRoot string
	store      *datagen.Store
	history    *History
	archiver   *Archiver
	analytics  *Analytics
	metrics    MetricsSink

	// newRealAgent is consulted once per run so configuration added
	// after startup is picked up without a restart.
	newRealAgent func() (agent.Agent, error)
	demoAgent    agent.Agent
	refiner      taskRefiner

	active   atomic.Bool
	stateMu  sync.RWMutex
	state    RunState
	statusCh chan string
	resultCh chan *RunResult
}

// NewRunner builds a runner. The real agent and the task refiner are
// resolved from the environment per run; when neither is available the
// demo agent covers every launch.
func NewRunner(cfg Config) *Runner {
	root := cfg.ReportRoot
	if root == "" {
		root = defaultReportRoot
	}

	r := &Runner{
		reportRoot: root,
		store:      cfg.Store,
		history:    cfg.History,
		archiver:   cfg.Archiver,
		analytics:  cfg.Analytics,
		metrics:    cfg.Metrics,
		newRealAgent: func() (agent.Agent, error) {
			return agent.NewBrowserClarkClient()
		},
		demoAgent: agent.NewDemoAgent(),
		state:     StatePending,
		statusCh:  make(chan string, statusQueueCap),
		resultCh:  make(chan *RunResult, resultQueueCap),
	}

	if cfg.AgentFactory != nil {
		r.newRealAgent = cfg.AgentFactory
	}
	if cfg.DemoAgent != nil {
		r.demoAgent = cfg.DemoAgent
	}

	if refiner, err := agent.NewDeepSeekClient(); err == nil {
		r.refiner = refiner
	}

	return r
}

// Launch starts one automation run. It returns the run ID and true, or
// false when another run is still active.
func (r *Runner) Launch(req RunRequest) (string, bool) {
	if !r.active.CompareAndSwap(false, true) {
		return "", false
	}

	runID := uuid.New().String()
	r.drainQueues()
	r.setState(StatePending)

	if r.metrics != nil {
		r.metrics.RunLaunched()
	}

	slog.Info("Launching automation run", "run_id", runID, "feature", req.FeatureTitle, "target", req.TargetURL)
	go r.execute(runID, req)

	return runID, true
}

// Active reports whether a run is in flight.
func (r *Runner) Active() bool {
	return r.active.Load()
}

// State returns the current run phase.
func (r *Runner) State() RunState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// PollStatus returns the next queued status line without blocking.
func (r *Runner) PollStatus() (string, bool) {
	select {
	case line := <-r.statusCh:
		return line, true
	default:
		return "", false
	}
}

// PollResult returns the terminal result without blocking.
func (r *Runner) PollResult() (*RunResult, bool) {
	select {
	case result := <-r.resultCh:
		return result, true
	default:
		return nil, false
	}
}

// execute is the per-run worker goroutine.
func (r *Runner) execute(runID string, req RunRequest) {
	defer r.active.Store(false)

	ctx := context.Background()
	result := &RunResult{ID: runID, StartedAt: time.Now()}
	statusCount := 0
	push := func(line string) {
		statusCount++
		r.pushStatus(line)
	}

	steps := testgen.ExtractSteps(req.TestCase)

	r.setState(StateInitializing)
	push("Initializing browser automation...")

	runDir, reportName, err := r.createRunDir(result.StartedAt)
	if err != nil {
		r.finishRun(ctx, result, statusCount, len(steps), err)
		return
	}
	result.ReportDir = runDir
	push("Created report directory: " + reportName)

	worker, mode := r.pickAgent(push)
	result.Mode = mode

	instructions := agent.BuildTask(steps, req.FeatureTitle, req.TargetURL)
	if mode == ModeReal && r.refiner != nil {
		push("Refining automation task...")
		instructions = r.refiner.RefineTask(ctx, instructions)
	}

	task := agent.Task{
		TargetURL:    req.TargetURL,
		Instructions: instructions,
		FeatureTitle: req.FeatureTitle,
		Headless:     req.Headless,
	}

	if mode == ModeReal {
		if req.Headless {
			push("Starting browser (headless mode)...")
			push("Executing test automation in background...")
		} else {
			push("Starting visible browser - watch your screen!")
			push("Executing test automation - you can watch the browser!")
		}
	}

	r.setState(StateRunning)
	output, err := worker.Run(ctx, task, func(line string) { push(line) })
	if err != nil {
		r.finishRun(ctx, result, statusCount, len(steps), err)
		return
	}
	result.Output = output
	if mode == ModeReal {
		push("Test automation completed!")
	}

	r.setState(StateReporting)
	push("Generating test report...")

	r.emitScript(ctx, req, steps, runDir, result)

	result.Success = true
	result.ReportPath = filepath.Join(runDir, reportName+".html")
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	if err := writeRunArtifacts(ctx, runDir, reportData{
		ReportName: reportName,
		Real:       mode == ModeReal,
		TargetURL:  req.TargetURL,
		Task:       instructions,
		Output:     output,
		ReportDir:  runDir,
	}, result); err != nil {
		result.Success = false
		result.ReportPath = ""
		r.finishRun(ctx, result, statusCount, len(steps), err)
		return
	}

	if r.archiver != nil {
		if err := r.archiver.ArchiveRunDir(ctx, runDir); err != nil {
			slog.Warn("Failed to archive run directory.", "run_id", runID, "error", err)
		}
	}

	r.finishRun(ctx, result, statusCount, len(steps), nil)
}

// pickAgent resolves the real agent when configured and falls back to
// the demo agent, emitting the corresponding status lines.
func (r *Runner) pickAgent(push func(string)) (agent.Agent, string) {
	real, err := r.newRealAgent()
	if err == nil && real != nil {
		push("Browser automation agent connected")
		push("Setting up AI agent...")
		return real, ModeReal
	}

	push("Browser automation not available, running in demo mode")
	push("Running in demo mode...")
	return r.demoAgent, ModeDemo
}

// emitScript writes a replayable test script into the run directory
// when a registered dataset is attached. Best effort: failures are
// logged and the run continues.
func (r *Runner) emitScript(ctx context.Context, req RunRequest, steps []string, runDir string, result *RunResult) {
	if r.store == nil || req.DatasetName == "" || req.IssueKey == "" || len(steps) == 0 {
		return
	}

	dataset, ok := r.store.Get(req.DatasetName)
	if !ok {
		slog.Warn("Dataset not found for script emission.", "dataset", req.DatasetName)
		return
	}

	testCase := &testgen.TestCase{
		IssueKey: req.IssueKey,
		Title:    req.FeatureTitle,
		Steps:    steps,
		Content:  req.TestCase,
	}

	rendered, err := script.Emit(ctx, testCase, dataset, req.TargetURL)
	if err != nil {
		slog.Warn("Failed to emit test script.", "issue_key", req.IssueKey, "error", err)
		return
	}

	path, err := script.Save(runDir, req.IssueKey, rendered)
	if err != nil {
		slog.Warn("Failed to save test script.", "issue_key", req.IssueKey, "error", err)
		return
	}

	result.ScriptPath = path
}

// finishRun stamps the terminal fields, records the run in the
// configured sinks, and enqueues the result.
func (r *Runner) finishRun(ctx context.Context, result *RunResult, statusCount, steps int, runErr error) {
	if runErr != nil {
		result.Success = false
		result.Error = runErr.Error()
		result.FinishedAt = time.Now()
		result.Duration = result.FinishedAt.Sub(result.StartedAt)
		r.pushStatus("Error: " + runErr.Error())
		statusCount++
		slog.Error("Automation run failed", "run_id", result.ID, "error", runErr)
	} else {
		slog.Info("Automation run finished", "run_id", result.ID, "mode", result.Mode, "duration", result.Duration)
	}

	if result.Success {
		r.setState(StateCompleted)
	} else {
		r.setState(StateFailed)
	}

	if r.history != nil {
		if err := r.history.SaveRun(result); err != nil {
			slog.Warn("Failed to record run history.", "run_id", result.ID, "error", err)
		}
	}
	if r.analytics != nil {
		if err := r.analytics.RecordRun(ctx, result, statusCount, steps); err != nil {
			slog.Warn("Failed to record run analytics.", "run_id", result.ID, "error", err)
		}
	}
	if r.metrics != nil {
		// Recorded here, not at result delivery: a result nobody polls
		// must still balance the in-flight gauge.
		r.metrics.RunFinished(result.Mode, result.Success, result.Duration.Seconds())
	}

	select {
	case r.resultCh <- result:
	default:
		slog.Warn("Result queue full, dropping run result.", "run_id", result.ID)
	}
}

func (r *Runner) createRunDir(started time.Time) (string, string, error) {
	name := "test_automation_" + started.Format("20060102_150405")
	dir := filepath.Join(r.reportRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return dir, name, nil
}

func (r *Runner) pushStatus(line string) {
	select {
	case r.statusCh <- line:
	default:
		slog.Warn("Status queue full, dropping status line.", "line", line)
	}
}

func (r *Runner) setState(state RunState) {
	r.stateMu.Lock()
	r.state = state
	r.stateMu.Unlock()
}

// drainQueues discards leftovers from a previous run so a fresh launch
// starts with empty queues.
func (r *Runner) drainQueues() {
	for {
		select {
		case <-r.statusCh:
		case <-r.resultCh:
		default:
			return
		}
	}
}
