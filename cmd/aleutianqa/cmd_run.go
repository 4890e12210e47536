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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/automation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/testgen"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	runTargetURL  string // Application under test
	runTestCase   string // Test case file to execute
	runIssueKey   string // Issue key labeling the run
	runTitle      string // Feature title for the agent task
	runDataset    string // CSV file feeding script emission
	runHeadless   bool   // Headless browser for real runs
	runNoTUI      bool   // Plain output instead of the live view
	runReportDir  string // Report output root
	runHistoryDir string // Run history directory
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	runCmd.Flags().StringVarP(&runTargetURL, "url", "u", "",
		"Application under test (default: config.yaml target_url)")
	runCmd.Flags().StringVarP(&runTestCase, "test-case", "f", "",
		"Test case file to execute (default: generated from --issue-key and --title)")
	runCmd.Flags().StringVarP(&runIssueKey, "issue-key", "k", "QA-0",
		"Issue key labeling the run")
	runCmd.Flags().StringVarP(&runTitle, "title", "t", "",
		"Feature title for the agent task")
	runCmd.Flags().StringVar(&runDataset, "dataset", "",
		"CSV file feeding the emitted test script")
	runCmd.Flags().BoolVar(&runHeadless, "headless", true,
		"Run the browser headless (real runs only)")
	runCmd.Flags().BoolVar(&runNoTUI, "no-tui", false,
		"Plain line output instead of the live view")
	runCmd.Flags().StringVar(&runReportDir, "report-dir", "",
		"Report output root (default: config.yaml report_dir or automation_reports)")
	runCmd.Flags().StringVar(&runHistoryDir, "history-dir", "",
		"Run history directory (default: QA_HISTORY_DIR or run_history)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runAutomation drives one automation run from the terminal. The run
// uses the real browser agent when BROWSERCLARK_URL is configured and
// falls back to the demo agent otherwise.
func runAutomation(cmd *cobra.Command, args []string) {
	key, err := validation.SanitizeIssueKey(runIssueKey)
	if err != nil {
		ux.Error("Invalid issue key: " + err.Error())
		os.Exit(1)
	}

	content, title := resolveTestCase(key)

	store := datagen.NewStore()
	datasetName := ""
	if runDataset != "" {
		ds, err := datagen.LoadCSVFile(runDataset)
		if err != nil {
			ux.Error("Dataset load failed: " + err.Error())
			os.Exit(1)
		}
		store.Put(ds)
		datasetName = ds.Name
	}

	historyDir := firstNonEmpty(runHistoryDir, os.Getenv("QA_HISTORY_DIR"), "run_history")
	history, err := automation.OpenHistory(automation.DefaultHistoryConfig(historyDir))
	if err != nil {
		ux.Warning("Run history unavailable: " + err.Error())
		history = nil
	} else {
		defer history.Close()
	}

	runner := automation.NewRunner(automation.Config{
		ReportRoot: firstNonEmpty(runReportDir, config.ReportDir, "automation_reports"),
		Store:      store,
		History:    history,
	})

	req := automation.RunRequest{
		IssueKey:     key,
		FeatureTitle: title,
		TestCase:     content,
		TargetURL:    firstNonEmpty(runTargetURL, config.TargetURL, "http://localhost:3000"),
		Headless:     runHeadless,
		DatasetName:  datasetName,
	}

	runID, ok := runner.Launch(req)
	if !ok {
		ux.Error("Another automation is already running")
		os.Exit(1)
	}

	var result *automation.RunResult
	if runNoTUI || !ux.IsInteractive() {
		result = followRunPlain(runner)
	} else {
		result = followRunTUI(runner, runID, req)
	}

	if result == nil {
		ux.Error("The run produced no result")
		os.Exit(1)
	}

	printRunResult(result)
	if !result.Success {
		os.Exit(1)
	}
}

// resolveTestCase loads the test case file or generates one from the
// issue key and title. Returns the content and the feature title.
func resolveTestCase(key string) (string, string) {
	if runTestCase != "" {
		data, err := os.ReadFile(runTestCase)
		if err != nil {
			ux.Error("Test case load failed: " + err.Error())
			os.Exit(1)
		}
		return string(data), firstNonEmpty(runTitle, key)
	}

	gen, err := testgen.NewGenerator()
	if err != nil {
		ux.Error("Test case generator unavailable: " + err.Error())
		os.Exit(1)
	}
	tc, err := gen.Generate(key, runTitle, "")
	if err != nil {
		ux.Error("Test case generation failed: " + err.Error())
		os.Exit(1)
	}
	return tc.Content, firstNonEmpty(runTitle, key)
}

// followRunPlain polls the runner once a second and prints status lines
// until the result lands.
func followRunPlain(runner *automation.Runner) *automation.RunResult {
	for {
		for {
			line, ok := runner.PollStatus()
			if !ok {
				break
			}
			ux.Info(line)
		}
		if result, ok := runner.PollResult(); ok {
			return result
		}
		time.Sleep(time.Second)
	}
}

// printRunResult renders the terminal outcome.
func printRunResult(result *automation.RunResult) {
	if result.Success {
		ux.Success("Run " + result.ID + " completed in " + result.Duration.Round(time.Millisecond).String())
	} else {
		ux.Error("Run " + result.ID + " failed: " + result.Error)
	}
	ux.KeyValue("Mode", result.Mode)
	if result.ReportPath != "" {
		ux.KeyValue("Report", result.ReportPath)
	}
	if result.ScriptPath != "" {
		ux.KeyValue("Script", result.ScriptPath)
	}
}

// =============================================================================
// Live View
// =============================================================================

var (
	runTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	runStateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	runStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	runPassStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	runFailStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// maxVisibleStatus caps the scrollback kept in the live view.
const maxVisibleStatus = 12

// runTickMsg drives the poll loop.
type runTickMsg time.Time

// runModel is the bubbletea model following one automation run.
type runModel struct {
	runner *automation.Runner
	runID  string
	target string

	spin   spinner.Model
	lines  []string
	result *automation.RunResult
	quit   bool
}

func runTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return runTickMsg(t)
	})
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(runTick(), m.spin.Tick)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// The run keeps going in the background; only the view exits.
			m.quit = true
			return m, tea.Quit
		}
		return m, nil

	case runTickMsg:
		for {
			line, ok := m.runner.PollStatus()
			if !ok {
				break
			}
			m.lines = append(m.lines, line)
			if len(m.lines) > maxVisibleStatus {
				m.lines = m.lines[len(m.lines)-maxVisibleStatus:]
			}
		}
		if result, ok := m.runner.PollResult(); ok {
			m.result = result
			return m, tea.Quit
		}
		return m, runTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder

	b.WriteString(runTitleStyle.Render("AleutianQA run "+m.runID) + "\n")
	b.WriteString(runStatusStyle.Render("target: "+m.target) + "\n\n")

	for _, line := range m.lines {
		b.WriteString(runStatusStyle.Render(line) + "\n")
	}

	if m.result != nil {
		b.WriteString("\n")
		if m.result.Success {
			b.WriteString(runPassStyle.Render("PASSED") + "\n")
		} else {
			b.WriteString(runFailStyle.Render("FAILED: "+m.result.Error) + "\n")
		}
	} else {
		b.WriteString("\n" + m.spin.View() + " " + runStateStyle.Render(m.runner.State().String()) + "  (q to detach)\n")
	}

	return b.String()
}

// followRunTUI renders the live view and returns the run result. When
// the user detaches it falls back to plain polling so the result is
// still collected.
func followRunTUI(runner *automation.Runner, runID string, req automation.RunRequest) *automation.RunResult {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = runStateStyle

	model := runModel{runner: runner, runID: runID, target: req.TargetURL, spin: spin}

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "live view failed:", err)
		return followRunPlain(runner)
	}

	m, ok := final.(runModel)
	if !ok || m.result == nil {
		if m.quit {
			return followRunPlain(runner)
		}
		return nil
	}
	return m.result
}
