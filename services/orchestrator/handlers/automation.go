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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianQA/services/automation"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/middleware"
)

// LaunchRun admits one automation run. 202 with the run ID on success,
// 409 while another run is active.
func LaunchRun(runner *automation.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "Automation.Launch")
		defer span.End()

		var req datatypes.LaunchRunRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		runID, ok := runner.Launch(automation.RunRequest{
			IssueKey:     req.IssueKey,
			FeatureTitle: req.FeatureTitle,
			TestCase:     req.TestCase,
			TargetURL:    req.TargetURL,
			Headless:     req.Headless,
			DatasetName:  req.DatasetName,
		})
		if !ok {
			span.SetStatus(codes.Error, "run already active")
			c.JSON(http.StatusConflict, gin.H{"error": "Another automation is already running!"})
			return
		}

		slog.Info("Automation run launched",
			"run_id", runID,
			"issue_key", req.IssueKey,
			"user", middleware.UserID(c),
		)

		c.JSON(http.StatusAccepted, datatypes.LaunchRunResponse{
			RunID: runID,
			State: runner.State().String(),
		})
	}
}

// RunStatus is the non-blocking status poll the UI hits once a second.
// 200 with one status line, or 204 when the queue is empty.
func RunStatus(runner *automation.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		line, ok := runner.PollStatus()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, datatypes.RunStatusResponse{
			Status: line,
			State:  runner.State().String(),
		})
	}
}

// RunResult is the non-blocking result poll. 200 with the terminal
// RunResult, or 204 while the run is still going.
func RunResult(runner *automation.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := runner.PollResult()
		if !ok {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// ListRuns returns run history, newest first. The limit query
// parameter caps the page (default 50).
func ListRuns(history *automation.History) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "Automation.ListRuns")
		defer span.End()

		if history == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not configured"})
			return
		}

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer in [1,500]"})
				return
			}
			limit = parsed
		}

		runs, err := history.ListRuns(limit)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to list run history", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
	}
}

// GetRun returns one historical run by ID.
func GetRun(history *automation.History) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "Automation.GetRun")
		defer span.End()

		if history == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run history not configured"})
			return
		}

		run, err := history.GetRun(c.Param("id"))
		if err != nil {
			if errors.Is(err, automation.ErrRunNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
			return
		}

		c.JSON(http.StatusOK, run)
	}
}
