// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers contains the HTTP handlers for the orchestrator
// service.
//
// Handlers are factories returning gin.HandlerFunc so dependencies
// (tracker client, test-case generator, dataset store, runner) are
// injected explicitly and tests can swap in fakes. Request bodies bind
// into datatypes structs and are validated before any work happens;
// failures surface as JSON {"error": ...} with an appropriate status.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianQA/services/orchestrator/observability"
)

// qaTracer traces handler operations. Span names follow
// <Handler>.<operation>.
var qaTracer = otel.Tracer("aleutianqa.orchestrator.handlers")

const (
	// ServiceName is reported by the health endpoint.
	ServiceName = "aleutianqa-orchestrator"

	// ServiceVersion is reported by the health endpoint.
	ServiceVersion = "1.0.0"
)

// startTime anchors the uptime reported by HealthCheck.
var startTime = time.Now()

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
		"version": ServiceVersion,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
	})
}

// metrics returns the process-wide QA metrics, or nil when metrics are
// disabled. Handlers must tolerate nil.
func metrics() *observability.QAMetrics {
	return observability.DefaultMetrics
}
