// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
)

const (
	apiPrefix = "/rest/api/3"

	// JIRA Cloud throttles aggressively on burst traffic. Five requests a
	// second with a burst of five keeps interactive use snappy without
	// tripping 429s.
	requestsPerSecond = 5
	requestBurst      = 5
)

type createIssueRequest struct {
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Project     projectRef   `json:"project"`
	Summary     string       `json:"summary"`
	Description adfDoc       `json:"description"`
	IssueType   issueTypeRef `json:"issuetype"`
	Labels      []string     `json:"labels"`
}

type projectRef struct {
	Key string `json:"key"`
}

type issueTypeRef struct {
	Name string `json:"name"`
}

type createIssueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

type projectResponse struct {
	IssueTypes []IssueType `json:"issueTypes"`
}

type fetchIssueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

// --- Client Implementation ---

// JiraClient talks to JIRA Cloud REST API v3 with basic auth.
type JiraClient struct {
	httpClient *http.Client
	creds      *Credentials
	limiter    *rate.Limiter
}

// NewJiraClient builds a client from the given credentials.
//
// Returns an error when the credentials are incomplete so callers can
// fall back to demo behavior instead of issuing requests that will 401.
func NewJiraClient(creds *Credentials) (*JiraClient, error) {
	if !creds.Configured() {
		slog.Warn("Tracker credentials are missing or incomplete.")
		return nil, fmt.Errorf("tracker credentials not configured")
	}

	return &JiraClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		creds:      creds,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}, nil
}

// ListIssueTypes implements the Client interface.
func (j *JiraClient) ListIssueTypes(ctx context.Context, projectKey string) ([]IssueType, error) {
	if err := validation.ValidateProjectKey(projectKey); err != nil {
		return nil, fmt.Errorf("invalid project key: %w", err)
	}

	body, status, err := j.do(ctx, http.MethodGet, apiPrefix+"/project/"+projectKey, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("tracker returned status %d fetching project %s: %s", status, projectKey, string(body))
	}

	var project projectResponse
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("failed to parse project response: %w", err)
	}

	slog.Debug("Listed issue types", "project", projectKey, "count", len(project.IssueTypes))
	return project.IssueTypes, nil
}

// CreateIssue implements the Client interface.
func (j *JiraClient) CreateIssue(ctx context.Context, spec IssueSpec) (*CreateResult, error) {
	if err := validation.ValidateProjectKey(spec.ProjectKey); err != nil {
		return nil, fmt.Errorf("invalid project key: %w", err)
	}
	if spec.Title == "" {
		return nil, fmt.Errorf("issue title is required")
	}

	issueType := spec.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	payload := createIssueRequest{
		Fields: issueFields{
			Project:     projectRef{Key: spec.ProjectKey},
			Summary:     spec.Title,
			Description: descriptionADF(spec.Description, spec.Module, spec.Complexity),
			IssueType:   issueTypeRef{Name: issueType},
			Labels:      issueLabels(spec.Title),
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue payload: %w", err)
	}

	body, status, err := j.do(ctx, http.MethodPost, apiPrefix+"/issue", payloadBytes)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("tracker returned status %d creating issue: %s", status, string(body))
	}

	var created createIssueResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}

	slog.Info("Created tracker issue", "key", created.Key, "project", spec.ProjectKey)

	return &CreateResult{
		Key:     created.Key,
		Payload: payloadBytes,
	}, nil
}

// FetchIssue implements the Client interface.
func (j *JiraClient) FetchIssue(ctx context.Context, issueKey string) (*Issue, error) {
	key, err := validation.SanitizeIssueKey(issueKey)
	if err != nil {
		return nil, fmt.Errorf("invalid issue key: %w", err)
	}

	body, status, err := j.do(ctx, http.MethodGet, apiPrefix+"/issue/"+key, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("tracker returned status %d fetching issue %s: %s", status, key, string(body))
	}

	var fetched fetchIssueResponse
	if err := json.Unmarshal(body, &fetched); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}

	issue := &Issue{
		Key:         key,
		Summary:     fetched.Fields.Summary,
		Description: describeIssue(fetched.Fields.Description),
	}

	slog.Debug("Fetched tracker issue", "key", key, "summary", issue.Summary)
	return issue, nil
}

// describeIssue normalizes the description field, which arrives either as
// an ADF document, a plain string, or not at all.
func describeIssue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "No description available"
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		if plain == "" {
			return "No description available"
		}
		return plain
	}

	if text := flattenADF(raw); text != "" {
		return text
	}
	return "No description available"
}

// do issues one rate-limited, authenticated request and returns the body.
func (j *JiraClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, j.creds.BaseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := j.creds.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read API token: %w", err)
	}
	req.SetBasicAuth(j.creds.Email, token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("Sending tracker request", "method", method, "path", path)

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Compile-time interface compliance check.
var _ Client = (*JiraClient)(nil)
