// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// trackerUnavailable rejects tracker endpoints when no credentials are
// configured. The rest of the pipeline (test cases, data, demo runs)
// keeps working without a tracker.
func trackerUnavailable(c *gin.Context) bool {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "tracker not configured: set jira_base_url, jira_email, and jira_api_token",
	})
	return true
}

// ListIssueTypes returns the issue types available in a project.
func ListIssueTypes(client tracker.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := qaTracer.Start(c.Request.Context(), "Tracker.ListIssueTypes")
		defer span.End()

		if client == nil {
			trackerUnavailable(c)
			return
		}

		projectKey := c.Param("projectKey")
		if err := validation.ValidateProjectKey(projectKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		types, err := client.ListIssueTypes(ctx, projectKey)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to list issue types", "project", projectKey, "error", err)
			if m := metrics(); m != nil {
				m.RecordTrackerError("issue_types", observability.ErrorCodeRequest)
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list issue types"})
			return
		}

		names := make([]string, 0, len(types))
		for _, it := range types {
			names = append(names, it.Name)
		}
		c.JSON(http.StatusOK, gin.H{"project_key": projectKey, "issue_types": types, "names": names})
	}
}

// CreateIssue files a tracker issue and returns the generated manual
// test case alongside the created key.
func CreateIssue(client tracker.Client, gen *testgen.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := qaTracer.Start(c.Request.Context(), "Tracker.CreateIssue")
		defer span.End()

		if client == nil {
			trackerUnavailable(c)
			return
		}

		var req datatypes.CreateIssueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			if m := metrics(); m != nil {
				m.RecordTrackerError("create", observability.ErrorCodeValidation)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := client.CreateIssue(ctx, tracker.IssueSpec{
			ProjectKey:  req.ProjectKey,
			Title:       req.Title,
			Description: req.Description,
			Module:      req.Module,
			Complexity:  req.Complexity,
			IssueType:   req.IssueType,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to create issue", "project", req.ProjectKey, "error", err)
			if m := metrics(); m != nil {
				m.RecordTrackerError("create", observability.ErrorCodeRequest)
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Created tracker issue", "key", result.Key, "project", req.ProjectKey)
		if m := metrics(); m != nil {
			m.RecordIssueCreated()
		}

		resp := datatypes.CreateIssueResponse{Key: result.Key, Payload: json.RawMessage(result.Payload)}
		if tc, genErr := gen.Generate(result.Key, req.Title, req.Description); genErr == nil {
			resp.TestCase = tc.Content
			if m := metrics(); m != nil {
				m.RecordTestCaseGenerated()
			}
		} else {
			slog.Warn("Issue created but test case generation failed", "key", result.Key, "error", genErr)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// FetchIssue retrieves an issue and the test case generated from it.
func FetchIssue(client tracker.Client, gen *testgen.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := qaTracer.Start(c.Request.Context(), "Tracker.FetchIssue")
		defer span.End()

		if client == nil {
			trackerUnavailable(c)
			return
		}

		issueKey, err := validation.SanitizeIssueKey(c.Param("issueKey"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		issue, err := client.FetchIssue(ctx, issueKey)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to fetch issue", "key", issueKey, "error", err)
			if m := metrics(); m != nil {
				m.RecordTrackerError("fetch", observability.ErrorCodeRequest)
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		if m := metrics(); m != nil {
			m.RecordIssueFetched()
		}

		resp := datatypes.FetchIssueResponse{
			Key:         issue.Key,
			Summary:     issue.Summary,
			Description: issue.Description,
		}
		if tc, genErr := gen.Generate(issue.Key, issue.Summary, issue.Description); genErr == nil {
			resp.TestCase = tc.Content
			if m := metrics(); m != nil {
				m.RecordTestCaseGenerated()
			}
		} else {
			slog.Warn("Issue fetched but test case generation failed", "key", issue.Key, "error", genErr)
		}

		c.JSON(http.StatusOK, resp)
	}
}
