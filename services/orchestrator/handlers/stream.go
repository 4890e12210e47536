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
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianQA/services/automation"
)

const (
	// streamPollInterval matches the UI's 1 s re-render cadence.
	streamPollInterval = 1 * time.Second

	// streamKeepAliveInterval paces SSE comment pings while the run is
	// quiet, keeping proxies from dropping the connection.
	streamKeepAliveInterval = 15 * time.Second

	// streamMaxDuration caps a stream so an abandoned connection with
	// no run in flight eventually goes away.
	streamMaxDuration = 30 * time.Minute
)

// StreamRunStatus streams run progress as Server-Sent Events.
//
// The handler drains the runner's status queue on a 1 s tick,
// forwarding each line as a status event. When the terminal result
// arrives it is sent as a result event followed by done, and the
// stream closes. With no run active the stream sends done immediately.
func StreamRunStatus(runner *automation.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetSSEHeaders(c.Writer)

		writer, err := NewSSEWriter(c.Writer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
			return
		}

		if !runner.Active() {
			// Nothing in flight; flush anything left in the queues so a
			// late subscriber still sees the final lines, then close.
			drainToWriter(runner, writer)
			_ = writer.WriteDone("")
			return
		}

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()
		keepAlive := time.NewTicker(streamKeepAliveInterval)
		defer keepAlive.Stop()
		deadline := time.NewTimer(streamMaxDuration)
		defer deadline.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				slog.Debug("Status stream client disconnected")
				return
			case <-deadline.C:
				_ = writer.WriteError("stream duration limit reached")
				return
			case <-keepAlive.C:
				if err := writer.WriteKeepAlive(); err != nil {
					return
				}
			case <-ticker.C:
				if done := drainToWriter(runner, writer); done {
					return
				}
			}
		}
	}
}

// drainToWriter forwards queued status lines and, when present, the
// terminal result. Returns true once the stream is finished.
func drainToWriter(runner *automation.Runner, writer SSEWriter) bool {
	for {
		line, ok := runner.PollStatus()
		if !ok {
			break
		}
		if err := writer.WriteStatus("", line); err != nil {
			return true
		}
	}

	result, ok := runner.PollResult()
	if !ok {
		return false
	}

	if err := writer.WriteResult(result.ID, result); err != nil {
		return true
	}
	_ = writer.WriteDone(result.ID)
	return true
}
