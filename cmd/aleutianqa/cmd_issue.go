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
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianQA/pkg/ux"
	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	issueProject     string // Project key
	issueTitle       string // Feature title
	issueDescription string // Feature description
	issueModule      string // Module under test
	issueComplexity  string // Low / Medium / High
	issueType        string // Task, Bug, Story, ...
	issueInteractive bool   // Prompt with a form instead of flags
	issueSaveDir     string // Save the generated test case here
)

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	issueCreateCmd.Flags().StringVarP(&issueProject, "project", "P", "",
		"Tracker project key (default: config.yaml project_key)")
	issueCreateCmd.Flags().StringVarP(&issueTitle, "title", "t", "",
		"Feature title")
	issueCreateCmd.Flags().StringVarP(&issueDescription, "description", "d", "",
		"Feature description")
	issueCreateCmd.Flags().StringVarP(&issueModule, "module", "m", "",
		"Module or component under test")
	issueCreateCmd.Flags().StringVar(&issueComplexity, "complexity", "Medium",
		"Feature complexity: Low, Medium, or High")
	issueCreateCmd.Flags().StringVar(&issueType, "type", "Task",
		"Issue type (Task, Bug, Story, ...)")
	issueCreateCmd.Flags().BoolVarP(&issueInteractive, "interactive", "i", false,
		"Fill the issue in with an interactive form")

	issueFetchCmd.Flags().StringVar(&issueSaveDir, "save", "",
		"Also save the generated test case to this directory")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// trackerClientOrExit builds the JIRA client or exits with guidance.
func trackerClientOrExit() tracker.Client {
	client, err := tracker.NewJiraClient(tracker.CredentialsFromEnv())
	if err != nil {
		ux.Error("Tracker not configured: set jira_base_url, jira_email, and jira_api_token")
		os.Exit(1)
	}
	return client
}

// runIssueCreate creates a tracked issue and prints the generated test
// case. With --interactive the fields come from a terminal form.
func runIssueCreate(cmd *cobra.Command, args []string) {
	if issueProject == "" {
		issueProject = config.ProjectKey
	}

	if issueInteractive {
		if err := promptIssueForm(); err != nil {
			ux.Error("Form cancelled: " + err.Error())
			os.Exit(1)
		}
	}

	if issueProject == "" || issueTitle == "" {
		ux.Error("A project key and a title are required (or use --interactive)")
		os.Exit(1)
	}

	client := trackerClientOrExit()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var result *tracker.CreateResult
	err := ux.WithSpinner("Creating issue in "+issueProject, func() error {
		var createErr error
		result, createErr = client.CreateIssue(ctx, tracker.IssueSpec{
			ProjectKey:  issueProject,
			Title:       issueTitle,
			Description: issueDescription,
			Module:      issueModule,
			Complexity:  issueComplexity,
			IssueType:   issueType,
		})
		return createErr
	})
	if err != nil {
		ux.Error("Issue creation failed: " + err.Error())
		os.Exit(1)
	}

	ux.Success("Created " + result.Key)

	gen, err := testgen.NewGenerator()
	if err != nil {
		ux.Error("Test case generator unavailable: " + err.Error())
		os.Exit(1)
	}
	tc, err := gen.Generate(result.Key, issueTitle, issueDescription)
	if err != nil {
		ux.Error("Test case generation failed: " + err.Error())
		os.Exit(1)
	}

	ux.KeyValue("Category", tc.Category)
	fmt.Println()
	fmt.Println(tc.Content)
}

// promptIssueForm collects the issue fields with a terminal form.
func promptIssueForm() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project key").
				Placeholder("QA").
				Value(&issueProject).
				Validate(validation.ValidateProjectKey),
			huh.NewInput().
				Title("Feature title").
				Placeholder("User login with email").
				Value(&issueTitle),
			huh.NewText().
				Title("Feature description").
				Placeholder("Describe the feature under test...").
				Value(&issueDescription),
			huh.NewInput().
				Title("Module").
				Placeholder("Authentication").
				Value(&issueModule),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Complexity").
				Options(
					huh.NewOption("Low", "Low"),
					huh.NewOption("Medium", "Medium"),
					huh.NewOption("High", "High"),
				).
				Value(&issueComplexity),
			huh.NewSelect[string]().
				Title("Issue type").
				Options(
					huh.NewOption("Task", "Task"),
					huh.NewOption("Bug", "Bug"),
					huh.NewOption("Story", "Story"),
					huh.NewOption("Epic", "Epic"),
					huh.NewOption("Improvement", "Improvement"),
				).
				Value(&issueType),
		),
	)
	return form.Run()
}

// runIssueFetch fetches an issue and prints its generated test case.
func runIssueFetch(cmd *cobra.Command, args []string) {
	key, err := validation.SanitizeIssueKey(args[0])
	if err != nil {
		ux.Error("Invalid issue key: " + err.Error())
		os.Exit(1)
	}

	client := trackerClientOrExit()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	issue, err := client.FetchIssue(ctx, key)
	if err != nil {
		ux.Error("Fetch failed: " + err.Error())
		os.Exit(1)
	}

	ux.Success("Fetched " + issue.Key + ": " + issue.Summary)

	gen, err := testgen.NewGenerator()
	if err != nil {
		ux.Error("Test case generator unavailable: " + err.Error())
		os.Exit(1)
	}
	tc, err := gen.Generate(issue.Key, issue.Summary, issue.Description)
	if err != nil {
		ux.Error("Test case generation failed: " + err.Error())
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(tc.Content)

	if issueSaveDir != "" {
		path, err := tc.Save(issueSaveDir)
		if err != nil {
			ux.Error("Save failed: " + err.Error())
			os.Exit(1)
		}
		ux.Success("Saved test case to " + path)
	}
}

// runIssueTypes lists the issue types available in a project.
func runIssueTypes(cmd *cobra.Command, args []string) {
	client := trackerClientOrExit()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	types, err := client.ListIssueTypes(ctx, args[0])
	if err != nil {
		ux.Error("Listing issue types failed: " + err.Error())
		os.Exit(1)
	}

	ux.Title("Issue types in " + args[0])
	for _, t := range types {
		detail := t.Description
		if t.Subtask {
			detail = "(subtask) " + detail
		}
		ux.CheckStatus(t.Name, ux.IconBullet, detail)
	}
}
