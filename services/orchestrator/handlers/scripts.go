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
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/testgen/script"
)

// EmitScript generates a Playwright-style spec from a test case and a
// registered dataset. The script text is always returned; it is also
// written to disk when the request names an output directory (default:
// the configured script directory).
func EmitScript(store *datagen.Store, scriptDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := qaTracer.Start(c.Request.Context(), "Scripts.Emit")
		defer span.End()

		var req datatypes.EmitScriptRequest
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

		ds, ok := store.Get(req.DatasetName)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}

		steps := testgen.ExtractSteps(req.TestCase)
		if len(steps) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "test case has no extractable steps"})
			return
		}

		tc := &testgen.TestCase{
			IssueKey: key,
			Steps:    steps,
			Content:  req.TestCase,
		}

		rendered, err := script.Emit(ctx, tc, ds, req.TargetURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Script emission failed", "key", key, "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}

		dir := req.OutputDir
		if dir == "" {
			dir = scriptDir
		}
		path, err := script.Save(dir, key, rendered)
		if err != nil {
			span.RecordError(err)
			slog.Warn("Script rendered but save failed", "key", key, "error", err)
			c.JSON(http.StatusOK, datatypes.EmitScriptResponse{Script: rendered})
			return
		}

		slog.Info("Emitted test script", "key", key, "path", path)
		c.JSON(http.StatusOK, datatypes.EmitScriptResponse{Path: path, Script: rendered})
	}
}
