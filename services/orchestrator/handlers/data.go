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
)

// maxUploadBytes caps CSV uploads. Test datasets are small; anything
// larger is almost certainly a mistake.
const maxUploadBytes = 8 * 1024 * 1024 // 8MB

// GenerateData produces a synthetic dataset, registers it, and writes
// the timestamped JSON dump.
func GenerateData(store *datagen.Store, dumpDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "Data.Generate")
		defer span.End()

		var req datatypes.GenerateDataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ds := datagen.Generate(req.Name, req.Count, req.Seed)
		store.Put(ds)

		dumpPath, err := ds.WriteJSON(dumpDir)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Warn("Dataset generated but JSON dump failed", "name", ds.Name, "error", err)
		}

		if m := metrics(); m != nil {
			m.RecordDatasetGenerated()
		}
		slog.Info("Generated synthetic dataset", "name", ds.Name, "rows", len(ds.Rows))

		c.JSON(http.StatusOK, datatypes.DatasetResponse{
			Name:     ds.Name,
			Headers:  ds.Headers,
			RowCount: len(ds.Rows),
			Rows:     ds.Rows,
			DumpPath: dumpPath,
		})
	}
}

// UploadData ingests a multipart CSV file into the registry. The form
// field is "file"; an optional "name" field overrides the dataset name
// derived from the filename.
func UploadData(store *datagen.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := qaTracer.Start(c.Request.Context(), "Data.Upload")
		defer span.End()

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing form file \"file\""})
			return
		}
		if fileHeader.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds 8MB limit"})
			return
		}

		name := c.PostForm("name")
		if name == "" {
			name = datagen.NameFromFilename(fileHeader.Filename)
		}
		if err := validation.ValidateDatasetName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
			return
		}
		defer f.Close()

		ds, err := datagen.ParseCSV(name, f)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		store.Put(ds)
		slog.Info("Uploaded dataset", "name", ds.Name, "rows", len(ds.Rows))

		c.JSON(http.StatusCreated, datatypes.DatasetResponse{
			Name:     ds.Name,
			Headers:  ds.Headers,
			RowCount: len(ds.Rows),
		})
	}
}

// ListData lists registered dataset names.
func ListData(store *datagen.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"datasets": store.List()})
	}
}

// GetData fetches one registered dataset with its rows.
func GetData(store *datagen.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if err := validation.ValidateDatasetName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ds, ok := store.Get(name)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}

		c.JSON(http.StatusOK, datatypes.DatasetResponse{
			Name:     ds.Name,
			Headers:  ds.Headers,
			RowCount: len(ds.Rows),
			Rows:     ds.Rows,
		})
	}
}
