// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianQA/pkg/extensions"
	"github.com/AleutianAI/AleutianQA/services/automation"
	"github.com/AleutianAI/AleutianQA/services/datagen"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/handlers"
	"github.com/AleutianAI/AleutianQA/services/orchestrator/middleware"
	"github.com/AleutianAI/AleutianQA/services/testgen"
	"github.com/AleutianAI/AleutianQA/services/tracker"
)

// Deps carries the wired collaborators the route tree needs.
type Deps struct {
	// Tracker is nil when JIRA credentials are not configured; the
	// tracker endpoints answer 503 in that case.
	Tracker tracker.Client

	// Generator renders manual test cases.
	Generator *testgen.Generator

	// Store is the dataset registry; DumpDir receives generated JSON
	// dumps and ScriptDir emitted test scripts.
	Store     *datagen.Store
	DumpDir   string
	ScriptDir string

	// TestCaseDir receives saved TestCase_<key>.txt files.
	TestCaseDir string

	// Runner executes automation runs; History serves past results.
	Runner  *automation.Runner
	History *automation.History

	// ReportRoot is where run report directories live.
	ReportRoot string

	// UIDir is served under /ui when non-empty.
	UIDir string

	// EnableMetrics exposes /metrics.
	EnableMetrics bool

	// Opts supplies the auth provider guarding /v1.
	Opts extensions.ServiceOptions
}

// SetupRoutes registers the full HTTP surface on the router.
//
// Health, metrics, and the static UI stay outside the authenticated
// group so probes and browsers reach them without a token.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)

	if deps.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.UIDir != "" {
		router.StaticFS("/ui", http.Dir(deps.UIDir))
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusMovedPermanently, "/ui/index.html")
		})
	}

	provider := deps.Opts.AuthProvider
	if provider == nil {
		provider = &extensions.NopAuthProvider{}
	}

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(provider))
	{
		trackerGroup := v1.Group("/tracker")
		{
			trackerGroup.GET("/projects/:projectKey/issue-types", handlers.ListIssueTypes(deps.Tracker))
			trackerGroup.POST("/issues", handlers.CreateIssue(deps.Tracker, deps.Generator))
			trackerGroup.GET("/issues/:issueKey", handlers.FetchIssue(deps.Tracker, deps.Generator))
		}

		testcases := v1.Group("/testcases")
		{
			testcases.POST("", handlers.GenerateTestCase(deps.Generator))
			testcases.POST("/save", handlers.SaveTestCase(deps.Generator, deps.TestCaseDir))
			testcases.GET("/categories", handlers.ListCategories(deps.Generator))
		}

		data := v1.Group("/data")
		{
			data.GET("", handlers.ListData(deps.Store))
			data.POST("/generate", handlers.GenerateData(deps.Store, deps.DumpDir))
			data.POST("/upload", handlers.UploadData(deps.Store))
			data.GET("/:name", handlers.GetData(deps.Store))
		}

		auto := v1.Group("/automation")
		{
			auto.POST("/runs", handlers.LaunchRun(deps.Runner))
			auto.GET("/runs", handlers.ListRuns(deps.History))
			auto.GET("/runs/:id", handlers.GetRun(deps.History))
			auto.GET("/status", handlers.RunStatus(deps.Runner))
			auto.GET("/result", handlers.RunResult(deps.Runner))
			auto.GET("/stream", handlers.StreamRunStatus(deps.Runner))
			auto.GET("/ws", handlers.HandleRunWebSocket(deps.Runner))
		}

		v1.POST("/scripts", handlers.EmitScript(deps.Store, deps.ScriptDir))

		reports := v1.Group("/reports")
		{
			reports.GET("", handlers.ListReports(deps.ReportRoot))
			reports.GET("/:name", handlers.GetReport(deps.ReportRoot))
			reports.GET("/:name/files/:file", handlers.GetReportFile(deps.ReportRoot))
		}
	}
}
