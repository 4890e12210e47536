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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianQA/services/datagen"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
	assert.Equal(t, "b", firstNonEmpty("", "b"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}

func TestDefaultPort(t *testing.T) {
	assert.Equal(t, 12310, defaultPort(0))
	assert.Equal(t, 8080, defaultPort(8080))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds := datagen.Generate("signup_users", 3, 42)

	path, err := writeCSV(ds, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "signup_users.csv"), path)

	loaded, err := datagen.LoadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, "signup_users", loaded.Name)
	assert.Equal(t, ds.Headers, loaded.Headers)
	assert.Equal(t, ds.Rows, loaded.Rows)
}

func TestWriteCSV_Deterministic(t *testing.T) {
	a := datagen.Generate("seeded", 5, 7)
	b := datagen.Generate("seeded", 5, 7)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestCommandTree(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"serve", "doctor", "issue", "generate", "data", "run"} {
		assert.Contains(t, names, want)
	}

	sub := make([]string, 0)
	for _, cmd := range issueCmd.Commands() {
		sub = append(sub, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"create", "fetch", "types"}, sub)
}

func TestConfigYAMLParsing(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"port: 9000",
		"report_dir: /tmp/qa_reports",
		"target_url: http://staging.example.com",
		"project_key: QA",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	old := config
	t.Cleanup(func() { config = old })

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, parseConfig(data))

	assert.Equal(t, 9000, config.Port)
	assert.Equal(t, "/tmp/qa_reports", config.ReportDir)
	assert.Equal(t, "http://staging.example.com", config.TargetURL)
	assert.Equal(t, "QA", config.ProjectKey)
}
