// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.toSlogLevel(); got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Logger Constructor Tests
// =============================================================================

func TestNew_DefaultConfig(t *testing.T) {
	logger := New(Config{})
	if logger == nil {
		t.Fatal("New() returned nil")
	}
	if logger.slog == nil {
		t.Error("logger.slog is nil")
	}
	defer logger.Close()
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		LogDir:  dir,
		Service: "automation",
		Quiet:   true,
	})
	defer logger.Close()

	logger.Info("run launched", "run_id", "r-1")

	if logger.file == nil {
		t.Fatal("expected log file to be opened")
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "automation_") && strings.HasSuffix(f.Name(), ".log") {
			found = true
		}
	}
	if !found {
		t.Error("expected log file with 'automation_' prefix")
	}
}

func TestNew_WithLogDir_NoService(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{LogDir: dir, Quiet: true})
	defer logger.Close()

	// Should use "aleutianqa" as default service name for the file
	files, _ := os.ReadDir(dir)
	found := false
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "aleutianqa_") {
			found = true
		}
	}
	if !found {
		t.Error("expected log file with 'aleutianqa_' prefix")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	defer logger.Close()

	if logger.config.Level != LevelInfo {
		t.Errorf("Default level = %v, want LevelInfo", logger.config.Level)
	}
	if logger.config.Service != "aleutianqa" {
		t.Errorf("Default service = %v, want aleutianqa", logger.config.Service)
	}
}

// =============================================================================
// Logging Behavior Tests
// =============================================================================

func TestLogger_LevelFiltering(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelWarn,
		Quiet:    true,
		Exporter: exporter,
	})
	defer logger.Close()

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("kept too")

	waitForEntries(t, exporter, 2)

	entries := exporter.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d exported entries, want 2", len(entries))
	}
}

func TestLogger_With(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Exporter: exporter})
	defer logger.Close()

	runLogger := logger.With("run_id", "r-42")
	runLogger.Info("rendering report")

	waitForEntries(t, exporter, 1)

	// Child shares the parent's exporter
	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Message != "rendering report" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestLogger_FileContent(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Service: "cli", Quiet: true})

	logger.Info("issue created", "issue_key", "QA-7")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Fatalf("got %d log files, want 1", len(files))
	}

	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	// File logs are always JSON
	if !strings.Contains(content, `"issue_key":"QA-7"`) {
		t.Errorf("file log missing attribute, got: %s", content)
	}
	if !strings.Contains(content, `"service":"cli"`) {
		t.Errorf("file log missing service attribute, got: %s", content)
	}
}

func TestLogger_ConcurrentUse(t *testing.T) {
	logger := New(Config{Quiet: true})
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()
}

func TestLogger_ExportErrorSilentlyDropped(t *testing.T) {
	logger := New(Config{Quiet: true, Exporter: &failingExporter{}})
	defer logger.Close()

	// Must not panic or surface the export failure to the caller
	logger.Info("still fine")
}

// =============================================================================
// Multi-Handler Tests
// =============================================================================

func TestMultiHandler_Handle(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&buf1, nil),
		slog.NewJSONHandler(&buf2, nil),
	}}

	logger := slog.New(h)
	logger.Info("fan out", "key", "value")

	if !strings.Contains(buf1.String(), "fan out") {
		t.Error("text handler did not receive record")
	}
	if !strings.Contains(buf2.String(), `"msg":"fan out"`) {
		t.Error("JSON handler did not receive record")
	}
}

func TestMultiHandler_Enabled(t *testing.T) {
	debugOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	errorOpts := &slog.HandlerOptions{Level: slog.LevelError}

	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(os.Stderr, errorOpts),
		slog.NewTextHandler(os.Stderr, debugOpts),
	}}

	// Enabled if any handler is enabled
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled(Debug) = true when one handler allows it")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(&buf, nil),
	}}

	withAttrs := h.WithAttrs([]slog.Attr{slog.String("service", "orchestrator")})
	slog.New(withAttrs).Info("hello")

	if !strings.Contains(buf.String(), `"service":"orchestrator"`) {
		t.Errorf("attribute not propagated: %s", buf.String())
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir available")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/.aleutianqa/logs", filepath.Join(home, ".aleutianqa/logs")},
		{"/var/log", "/var/log"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgsToMap(t *testing.T) {
	got := argsToMap([]any{"run_id", "r-1", "count", 3})
	if got["run_id"] != "r-1" || got["count"] != 3 {
		t.Errorf("argsToMap = %v", got)
	}

	// Odd trailing arg is dropped
	got = argsToMap([]any{"key", "value", "dangling"})
	if len(got) != 1 {
		t.Errorf("argsToMap with dangling arg = %v", got)
	}

	// Non-string keys are skipped
	got = argsToMap([]any{42, "value"})
	if len(got) != 0 {
		t.Errorf("argsToMap with int key = %v", got)
	}
}

// =============================================================================
// Exporter Tests
// =============================================================================

func TestBufferedExporter(t *testing.T) {
	e := NewBufferedExporter()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Message:   "run completed",
		Service:   "automation",
		Attrs:     map[string]any{"mode": "demo"},
	}
	if err := e.Export(context.Background(), entry); err != nil {
		t.Fatalf("Export: %v", err)
	}

	entries := e.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Message != "run completed" {
		t.Errorf("message = %q", entries[0].Message)
	}

	// Entries returns a copy
	entries[0].Message = "mutated"
	if e.Entries()[0].Message != "run completed" {
		t.Error("Entries() did not return a copy")
	}
}

func TestWriterExporter(t *testing.T) {
	var buf bytes.Buffer
	e := NewWriterExporter(&buf)

	err := e.Export(context.Background(), LogEntry{
		Timestamp: time.Now(),
		Level:     LevelWarn,
		Message:   "demo fallback",
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "WARN: demo fallback") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestNopExporter(t *testing.T) {
	e := &NopExporter{}
	if err := e.Export(context.Background(), LogEntry{}); err != nil {
		t.Errorf("Export: %v", err)
	}
	if err := e.Flush(context.Background()); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

// =============================================================================
// Test Helpers
// =============================================================================

// waitForEntries polls the exporter until it holds at least n entries.
// Export runs on a goroutine, so tests must allow it to land.
func waitForEntries(t *testing.T, e *BufferedExporter, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(e.Entries()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d exported entries (have %d)", n, len(e.Entries()))
}

// failingExporter always errors, to verify export failures stay silent.
type failingExporter struct{}

func (e *failingExporter) Export(ctx context.Context, entry LogEntry) error {
	return errors.New("export failed")
}
func (e *failingExporter) Flush(ctx context.Context) error { return nil }
func (e *failingExporter) Close() error                    { return nil }
