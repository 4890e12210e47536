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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
)

// --- Global Command Variables ---
var (
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "aleutianqa",
		Short: "A cli for generating test cases from tracked issues and running them in a browser",
		Long: `AleutianQA turns feature descriptions into tracked JIRA issues,
				templated manual test cases, and automated browser runs with
				HTML reports and replayable test scripts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
		},
	}

	// --- Service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the AleutianQA orchestrator HTTP server",
		Run:   runServe, // Defined in cmd_serve.go
	}

	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Verify credentials, agent endpoints, and working directories",
		Run:   runDoctor, // Defined in cmd_doctor.go
	}

	// --- Tracker Issues ---
	issueCmd = &cobra.Command{
		Use:   "issue",
		Short: "Create and fetch tracked issues",
	}
	issueCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a tracked issue from a feature description",
		Run:   runIssueCreate, // Defined in cmd_issue.go
	}
	issueFetchCmd = &cobra.Command{
		Use:   "fetch [issue-key]",
		Short: "Fetch an existing issue and generate its test case",
		Args:  cobra.ExactArgs(1),
		Run:   runIssueFetch, // Defined in cmd_issue.go
	}
	issueTypesCmd = &cobra.Command{
		Use:   "types [project-key]",
		Short: "List the issue types available in a project",
		Args:  cobra.ExactArgs(1),
		Run:   runIssueTypes, // Defined in cmd_issue.go
	}

	// --- Test Cases ---
	generateCmd = &cobra.Command{
		Use:   "generate [issue-key]",
		Short: "Generate a manual test case without a tracker round-trip",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate, // Defined in cmd_generate.go
	}

	// --- Test Data ---
	dataCmd = &cobra.Command{
		Use:   "data",
		Short: "Generate and inspect test datasets",
	}
	dataGenerateCmd = &cobra.Command{
		Use:   "generate [name]",
		Short: "Generate a synthetic CSV-shaped dataset",
		Args:  cobra.ExactArgs(1),
		Run:   runDataGenerate, // Defined in cmd_data.go
	}
	dataInspectCmd = &cobra.Command{
		Use:   "inspect [file.csv]",
		Short: "Parse a CSV dataset and show its headers and rows",
		Args:  cobra.ExactArgs(1),
		Run:   runDataInspect, // Defined in cmd_data.go
	}

	// --- Automation ---
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a test case in the browser agent and render a report",
		Run:   runAutomation, // Defined in cmd_run.go
	}
)

// init runs when the Go program starts
func init() {
	// Global UX personality flag
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default), standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(doctorCmd)

	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueFetchCmd)
	issueCmd.AddCommand(issueTypesCmd)

	rootCmd.AddCommand(generateCmd)

	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataGenerateCmd)
	dataCmd.AddCommand(dataInspectCmd)

	rootCmd.AddCommand(runCmd)
}
