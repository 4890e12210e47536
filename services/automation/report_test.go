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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleReportData() reportData {
	return reportData{
		ReportName: "test_automation_20250305_143000",
		Real:       false,
		TargetURL:  "https://app.example.com",
		Task:       "Navigate to https://app.example.com and test the feature: User Login",
		Output:     "All steps passed",
		ReportDir:  "automation_reports/test_automation_20250305_143000",
		Generated:  time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC),
	}
}

// ============================================================================
// renderReport Tests
// ============================================================================

func TestRenderReport_DemoMode(t *testing.T) {
	doc, err := renderReport(sampleReportData())
	if err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}

	html := string(doc)
	for _, fragment := range []string{
		"Test Automation Report - test_automation_20250305_143000",
		"DEMO MODE",
		"background: #ffc107",
		"color: #212529",
		"Generated on March 5, 2025 at 2:30 PM",
		"Executed:</strong> 2025-03-05 14:30:00",
		`<a href="https://app.example.com" target="_blank">https://app.example.com</a>`,
		"All steps passed",
		"test_automation_20250305_143000.html</strong> - This test report",
		"task.txt",
		"result.json",
	} {
		if !strings.Contains(html, fragment) {
			t.Errorf("Expected report to contain %q", fragment)
		}
	}
}

func TestRenderReport_RealMode(t *testing.T) {
	data := sampleReportData()
	data.Real = true

	doc, err := renderReport(data)
	if err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}

	html := string(doc)
	for _, fragment := range []string{
		"REAL AUTOMATION",
		"background: #28a745",
		"color: white",
	} {
		if !strings.Contains(html, fragment) {
			t.Errorf("Expected report to contain %q", fragment)
		}
	}
	if strings.Contains(html, "DEMO MODE") {
		t.Error("Real-mode report should not carry the demo badge")
	}
}

func TestRenderReport_EscapesContent(t *testing.T) {
	data := sampleReportData()
	data.Task = "<script>alert('task')</script>"
	data.Output = "<img src=x onerror=alert(1)>"

	doc, err := renderReport(data)
	if err != nil {
		t.Fatalf("renderReport failed: %v", err)
	}

	html := string(doc)
	if strings.Contains(html, "<script>alert") {
		t.Error("Task content must be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("Expected escaped task markup in the document")
	}
	if strings.Contains(html, "<img src=x") {
		t.Error("Result content must be escaped")
	}
}

// ============================================================================
// writeRunArtifacts Tests
// ============================================================================

func TestWriteRunArtifacts(t *testing.T) {
	dir := t.TempDir()
	data := sampleReportData()
	data.ReportDir = dir

	result := &RunResult{
		ID:         "run-1",
		Success:    true,
		Mode:       ModeDemo,
		Output:     data.Output,
		ReportDir:  dir,
		ReportPath: filepath.Join(dir, data.ReportName+".html"),
		StartedAt:  data.Generated,
		FinishedAt: data.Generated.Add(3 * time.Second),
		Duration:   3 * time.Second,
	}

	if err := writeRunArtifacts(context.Background(), dir, data, result); err != nil {
		t.Fatalf("writeRunArtifacts failed: %v", err)
	}

	doc, err := os.ReadFile(filepath.Join(dir, data.ReportName+".html"))
	if err != nil {
		t.Fatalf("Report document missing: %v", err)
	}
	if !strings.Contains(string(doc), "DEMO MODE") {
		t.Error("Report document missing the mode badge")
	}

	task, err := os.ReadFile(filepath.Join(dir, "task.txt"))
	if err != nil {
		t.Fatalf("Task artifact missing: %v", err)
	}
	if string(task) != data.Task {
		t.Errorf("task.txt = %q, want the instructions", string(task))
	}

	blob, err := os.ReadFile(filepath.Join(dir, "result.json"))
	if err != nil {
		t.Fatalf("Result artifact missing: %v", err)
	}
	var stored RunResult
	if err := json.Unmarshal(blob, &stored); err != nil {
		t.Fatalf("result.json does not parse: %v", err)
	}
	if stored.ID != "run-1" || !stored.Success || stored.Mode != ModeDemo {
		t.Errorf("result.json roundtrip mismatch: %+v", stored)
	}
}

func TestWriteRunArtifacts_StampsGeneratedWhenZero(t *testing.T) {
	dir := t.TempDir()
	data := sampleReportData()
	data.Generated = time.Time{}

	if err := writeRunArtifacts(context.Background(), dir, data, &RunResult{ID: "run-2"}); err != nil {
		t.Fatalf("writeRunArtifacts failed: %v", err)
	}

	doc, err := os.ReadFile(filepath.Join(dir, data.ReportName+".html"))
	if err != nil {
		t.Fatalf("Report document missing: %v", err)
	}
	if strings.Contains(string(doc), "January 1, 0001") {
		t.Error("Expected a render-time stamp, not the zero time")
	}
}
