// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command aleutianqa is the CLI for the AleutianQA test case generator
// and browser automation tool.
//
// The CLI covers the same operations as the web UI: creating tracked
// issues, generating manual test cases, managing test datasets, and
// launching automation runs. A config.yaml in the working directory is
// loaded when present; every setting can also come from environment
// variables or flags.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors the optional config.yaml file.
type Config struct {
	// Port is the orchestrator HTTP port for the serve command.
	Port int `yaml:"port"`

	// ReportDir overrides the automation report root.
	ReportDir string `yaml:"report_dir"`

	// DatasetDir overrides the watched dataset directory.
	DatasetDir string `yaml:"dataset_dir"`

	// ScriptDir overrides the emitted script directory.
	ScriptDir string `yaml:"script_dir"`

	// TestCaseDir overrides the saved test case directory.
	TestCaseDir string `yaml:"testcase_dir"`

	// TargetURL is the default application under test.
	TargetURL string `yaml:"target_url"`

	// ProjectKey is the default tracker project.
	ProjectKey string `yaml:"project_key"`
}

var config Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// config.yaml is optional; flags and env cover everything.
		yamlFile, err := os.ReadFile("config.yaml")
		if err != nil {
			return
		}
		if err := parseConfig(yamlFile); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	})
}

// parseConfig fills the global config from YAML bytes.
func parseConfig(data []byte) error {
	return yaml.Unmarshal(data, &config)
}
