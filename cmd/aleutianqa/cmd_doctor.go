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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var doctorJSONOutput bool // Output as JSON

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSONOutput, "json", false,
		"Output as JSON for scripting")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// doctorCheck is one verification result.
type doctorCheck struct {
	Name     string `json:"name"`
	Ok       bool   `json:"ok"`
	Required bool   `json:"required"`
	Detail   string `json:"detail"`
}

// runDoctor verifies the environment the tool depends on: tracker
// credentials, the browser agent endpoint, the task refinement key, and
// writable working directories. Optional integrations report a warning
// rather than a failure.
func runDoctor(cmd *cobra.Command, args []string) {
	checks := collectDoctorChecks()

	if doctorJSONOutput {
		out, _ := json.MarshalIndent(checks, "", "  ")
		fmt.Println(string(out))
		if requiredFailures(checks) > 0 {
			os.Exit(1)
		}
		return
	}

	ux.Title("AleutianQA setup verification")

	passed := 0
	for _, check := range checks {
		icon := ux.IconSuccess
		if !check.Ok {
			icon = ux.IconWarning
			if check.Required {
				icon = ux.IconError
			}
		} else {
			passed++
		}
		ux.CheckStatus(check.Name, icon, check.Detail)
	}

	ux.Summary(passed, len(checks)-passed, len(checks))

	if requiredFailures(checks) > 0 {
		os.Exit(1)
	}
}

// collectDoctorChecks runs every verification and returns the results.
func collectDoctorChecks() []doctorCheck {
	var checks []doctorCheck

	// Tracker credentials
	creds := tracker.CredentialsFromEnv()
	if creds.Configured() {
		checks = append(checks, doctorCheck{
			Name: "JIRA credentials", Ok: true, Required: true,
			Detail: creds.BaseURL,
		})
	} else {
		checks = append(checks, doctorCheck{
			Name: "JIRA credentials", Ok: false, Required: true,
			Detail: "set jira_base_url, jira_email, and jira_api_token",
		})
	}

	// Browser agent endpoint
	if url := os.Getenv("BROWSERCLARK_URL"); url != "" {
		checks = append(checks, doctorCheck{
			Name: "Browser agent", Ok: true, Required: false, Detail: url,
		})
	} else {
		checks = append(checks, doctorCheck{
			Name: "Browser agent", Ok: false, Required: false,
			Detail: "BROWSERCLARK_URL not set; runs fall back to demo mode",
		})
	}

	// Task refinement key
	if os.Getenv("DEEPSEEK_API_KEY") != "" {
		checks = append(checks, doctorCheck{
			Name: "DeepSeek API key", Ok: true, Required: false, Detail: "configured",
		})
	} else {
		checks = append(checks, doctorCheck{
			Name: "DeepSeek API key", Ok: false, Required: false,
			Detail: "DEEPSEEK_API_KEY not set; tasks are sent unrefined",
		})
	}

	// Working directories
	for _, dir := range []struct {
		name string
		path string
	}{
		{"Report directory", firstNonEmpty(config.ReportDir, os.Getenv("QA_REPORT_DIR"), "automation_reports")},
		{"Dataset directory", firstNonEmpty(config.DatasetDir, os.Getenv("QA_DATASET_DIR"), "test_data")},
		{"Script directory", firstNonEmpty(config.ScriptDir, os.Getenv("QA_SCRIPT_DIR"), "test_scripts")},
		{"Test case directory", firstNonEmpty(config.TestCaseDir, os.Getenv("QA_TESTCASE_DIR"), "test_cases")},
	} {
		if err := checkWritable(dir.path); err != nil {
			checks = append(checks, doctorCheck{
				Name: dir.name, Ok: false, Required: true,
				Detail: err.Error(),
			})
		} else {
			checks = append(checks, doctorCheck{
				Name: dir.name, Ok: true, Required: true, Detail: dir.path,
			})
		}
	}

	return checks
}

// checkWritable verifies the directory exists (creating it if needed)
// and accepts a file write.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("cannot write to %s: %w", dir, err)
	}
	os.Remove(probe)
	return nil
}

// requiredFailures counts failed checks that block the tool.
func requiredFailures(checks []doctorCheck) int {
	n := 0
	for _, check := range checks {
		if check.Required && !check.Ok {
			n++
		}
	}
	return n
}
