// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tracker provides a typed client for issue trackers.
//
// The only implementation today is JiraClient (JIRA Cloud REST API v3).
// Handlers and the CLI depend on the Client interface so tests can swap
// in fakes without a live tracker.
package tracker

import (
	"context"
	"encoding/json"
)

// Issue is a tracker issue reduced to the fields the QA pipeline consumes.
type Issue struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

// IssueSpec describes an issue to be created.
//
// IssueType defaults to "Task" when empty. Module and Complexity are
// rendered into the issue description verbatim.
type IssueSpec struct {
	ProjectKey  string
	Title       string
	Description string
	Module      string
	Complexity  string
	IssueType   string
}

// IssueType is one entry of a project's issue type list.
type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Subtask     bool   `json:"subtask"`
}

// CreateResult carries the created issue key together with the exact
// payload that was sent. The UI displays the payload so users can see
// what landed in their tracker.
type CreateResult struct {
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// Client is the tracker operation surface used by the rest of the system.
type Client interface {
	// ListIssueTypes returns the issue types available in a project.
	ListIssueTypes(ctx context.Context, projectKey string) ([]IssueType, error)

	// CreateIssue creates a new issue and returns its key plus the payload sent.
	CreateIssue(ctx context.Context, spec IssueSpec) (*CreateResult, error)

	// FetchIssue retrieves an issue's summary and flattened description.
	FetchIssue(ctx context.Context, issueKey string) (*Issue, error)
}
