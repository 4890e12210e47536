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
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// reportDirPattern matches run directory names produced by the runner.
// Anything else under the report root is ignored, and the pattern
// doubles as path-traversal protection on the fetch endpoint.
var reportDirPattern = regexp.MustCompile(`^test_automation_[0-9]{8}_[0-9]{6}$`)

// ListReports lists run report directories under the report root,
// newest first, with the files each one contains.
func ListReports(reportRoot string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := os.ReadDir(reportRoot)
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusOK, gin.H{"reports": []gin.H{}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report directory"})
			return
		}

		reports := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() || !reportDirPattern.MatchString(entry.Name()) {
				continue
			}
			files := []string{}
			if inner, err := os.ReadDir(filepath.Join(reportRoot, entry.Name())); err == nil {
				for _, f := range inner {
					if !f.IsDir() {
						files = append(files, f.Name())
					}
				}
			}
			reports = append(reports, gin.H{"name": entry.Name(), "files": files})
		}

		sort.Slice(reports, func(i, j int) bool {
			return reports[i]["name"].(string) > reports[j]["name"].(string)
		})

		c.JSON(http.StatusOK, gin.H{"reports": reports})
	}
}

// GetReport serves the HTML report of one run directory.
func GetReport(reportRoot string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if !reportDirPattern.MatchString(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
			return
		}

		path := filepath.Join(reportRoot, name, name+".html")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report"})
			return
		}

		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
}

// GetReportFile serves a non-HTML artifact (task.txt, result.json,
// generated script) from a run directory. The file parameter must be a
// bare name; separators are rejected.
func GetReportFile(reportRoot string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		file := c.Param("file")
		if !reportDirPattern.MatchString(name) || file == "" ||
			strings.ContainsAny(file, `/\`) || strings.Contains(file, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report file"})
			return
		}

		path := filepath.Join(reportRoot, name, file)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.File(path)
	}
}
