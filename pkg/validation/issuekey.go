// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are
// interpolated into tracker REST paths, file names, or dataset lookups.
// Using these validators prevents path traversal and URL injection through
// issue keys, project keys, and dataset names.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// projectKeyPattern matches valid tracker project keys.
// Allows: an uppercase letter followed by uppercase letters or digits.
// Max length: 10 characters (JIRA's project key ceiling).
var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// issueKeyPattern matches valid tracker issue keys (PROJ-123 form).
var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}-[0-9]{1,8}$`)

// datasetNamePattern matches safe dataset names usable as file stems.
var datasetNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-]{0,63}$`)

// ValidateProjectKey validates a tracker project key before it is used in
// a REST path.
//
// Valid project keys:
//   - 2-10 characters
//   - First character uppercase A-Z
//   - Remainder uppercase letters or digits
//
// Returns an error if the key is invalid.
//
// Example:
//
//	if err := validation.ValidateProjectKey(projectKey); err != nil {
//	    return nil, fmt.Errorf("invalid project key: %w", err)
//	}
//	// Safe to interpolate into the request URL
func ValidateProjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("project key cannot be empty")
	}

	if !projectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid project key format: %q (must be 2-10 uppercase alphanumeric chars starting with a letter)", key)
	}

	return nil
}

// ValidateIssueKey validates a tracker issue key (e.g. PROJ-123) before it
// is used in a REST path or a generated file name.
func ValidateIssueKey(key string) error {
	if key == "" {
		return fmt.Errorf("issue key cannot be empty")
	}

	if !issueKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid issue key format: %q (expected PROJECT-NUMBER, e.g. QA-123)", key)
	}

	return nil
}

// ValidateDatasetName validates a dataset name before it is used as a file
// stem or a registry lookup.
func ValidateDatasetName(name string) error {
	if name == "" {
		return fmt.Errorf("dataset name cannot be empty")
	}

	if !datasetNamePattern.MatchString(name) {
		return fmt.Errorf("invalid dataset name: %q (alphanumeric, underscore, hyphen; max 64 chars)", name)
	}

	return nil
}

// SanitizeIssueKey normalizes and validates an issue key.
// Returns the uppercase key if valid, or an error if invalid.
//
// Use this when accepting keys typed by a user:
//
//	safeKey, err := validation.SanitizeIssueKey(userInput)
//	if err != nil {
//	    return err
//	}
//	// safeKey is uppercase and validated
func SanitizeIssueKey(key string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(key))
	if err := ValidateIssueKey(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
