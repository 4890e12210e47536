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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianQA/pkg/validation"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianQA/services/testgen"
)

// GenerateTestCase renders a manual test case from an explicit
// key/summary/description triple, without a tracker round-trip.
func GenerateTestCase(gen *testgen.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "TestCases.Generate")
		defer span.End()

		var req datatypes.GenerateTestCaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tc, err := gen.Generate(req.IssueKey, req.Summary, req.Description)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if m := metrics(); m != nil {
			m.RecordTestCaseGenerated()
		}

		c.JSON(http.StatusOK, datatypes.TestCaseResponse{
			IssueKey: tc.IssueKey,
			Category: tc.Category,
			Steps:    tc.Steps,
			Content:  tc.Content,
		})
	}
}

// SaveTestCase persists TestCase_<key>.txt under the artifact
// directory. Content may be user-edited; when empty the test case is
// regenerated from the summary and description.
func SaveTestCase(gen *testgen.Generator, dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "TestCases.Save")
		defer span.End()

		var req datatypes.SaveTestCaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		key, err := validation.SanitizeIssueKey(req.IssueKey)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tc := &testgen.TestCase{IssueKey: key, Title: req.Summary, Content: req.Content}
		if tc.Content == "" {
			generated, genErr := gen.Generate(key, req.Summary, req.Description)
			if genErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": genErr.Error()})
				return
			}
			tc = generated
		}
		tc.Steps = testgen.ExtractSteps(tc.Content)

		path, err := tc.Save(dir)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to save test case", "key", key, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save test case"})
			return
		}

		slog.Info("Saved test case", "key", key, "path", path)
		c.JSON(http.StatusOK, datatypes.TestCaseResponse{
			IssueKey: tc.IssueKey,
			Category: tc.Category,
			Steps:    tc.Steps,
			Content:  tc.Content,
			Path:     path,
		})
	}
}

// ListCategories exposes the embedded category catalog so the UI can
// show which feature classes get tailored steps.
func ListCategories(gen *testgen.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats := gen.Catalog().Categories
		out := make([]gin.H, 0, len(cats))
		for _, cat := range cats {
			out = append(out, gin.H{
				"name":     cat.Name,
				"priority": cat.Priority,
				"keywords": cat.Keywords,
				"steps":    cat.Steps,
			})
		}
		c.JSON(http.StatusOK, gin.H{"categories": out})
	}
}
