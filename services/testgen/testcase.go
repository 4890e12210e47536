// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package testgen renders manual test cases from tracker issues.
//
// A test case is a plain-text artifact in a fixed template. The steps come
// from the category catalog: the issue title and description are classified
// by keyword, and the matching category's canned steps are substituted for
// the generic defaults.
package testgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/testgen/catalog"
)

// maxDescriptionRunes caps how much of the issue description is echoed into
// the Expected Result section.
const maxDescriptionRunes = 300

// defaultPrecondition is used when a category carries no preconditions.
const defaultPrecondition = "User should have access to the application."

// TestCase is a rendered manual test case.
type TestCase struct {
	// IssueKey is the sanitized tracker key the case was generated from.
	IssueKey string

	// Title is the issue summary.
	Title string

	// Category is the name of the matched catalog category.
	Category string

	// Steps are the test steps, in order, without numbering.
	Steps []string

	// Content is the full rendered test-case text.
	Content string
}

// Generator renders test cases using the embedded category catalog.
type Generator struct {
	catalog *catalog.Catalog
}

// NewGenerator loads the embedded catalog and returns a ready Generator.
func NewGenerator() (*Generator, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}
	return &Generator{catalog: cat}, nil
}

// Catalog exposes the loaded category catalog for listing endpoints.
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}

// Generate renders the manual test case for a tracker issue.
//
// The issue key is sanitized before it is embedded in the test case ID,
// since the ID later becomes part of a file name.
func (g *Generator) Generate(issueKey, summary, description string) (*TestCase, error) {
	key, err := validation.SanitizeIssueKey(issueKey)
	if err != nil {
		return nil, fmt.Errorf("invalid issue key: %w", err)
	}

	if description == "" {
		description = "No description available"
	}

	category := g.catalog.Classify(summary, description)

	preconditions := defaultPrecondition
	if len(category.Preconditions) > 0 {
		preconditions = strings.Join(category.Preconditions, " ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Manual Test Case ===\n")
	fmt.Fprintf(&b, "Test Case ID: TC_%s\n", key)
	fmt.Fprintf(&b, "Title: %s\n", summary)
	// Plain quotes, not %q: a summary containing quotes must land in
	// the document raw, without Go escaping.
	fmt.Fprintf(&b, "Objective: Verify that the system meets the requirement \"%s\".\n", summary)
	fmt.Fprintf(&b, "Preconditions: %s\n", preconditions)
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Test Steps:\n")
	for i, step := range category.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Expected Result:\n")
	fmt.Fprintf(&b, "  The system should behave as described in: %s\n", truncateDescription(description))
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Priority: Medium\n")
	fmt.Fprintf(&b, "Test Type: Manual\n")
	fmt.Fprintf(&b, "Status: Draft\n")
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Notes:\n")
	fmt.Fprintf(&b, "- This test case was auto-generated from JIRA issue %s\n", key)
	fmt.Fprintf(&b, "- Review and modify as needed before execution\n")

	steps := make([]string, len(category.Steps))
	copy(steps, category.Steps)

	return &TestCase{
		IssueKey: key,
		Title:    summary,
		Category: category.Name,
		Steps:    steps,
		Content:  b.String(),
	}, nil
}

// Save writes the test case to dir as TestCase_<issueKey>.txt.
//
// The directory is created if missing. Returns the written path.
func (tc *TestCase) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create test case directory: %w", err)
	}

	path := filepath.Join(dir, "TestCase_"+tc.IssueKey+".txt")
	if err := os.WriteFile(path, []byte(tc.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write test case: %w", err)
	}
	return path, nil
}

// truncateDescription caps the description at maxDescriptionRunes runes,
// appending an ellipsis when trimmed.
func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionRunes {
		return s
	}
	return string(runes[:maxDescriptionRunes]) + "..."
}
