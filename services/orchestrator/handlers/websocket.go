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
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianQA/services/automation"
)

// WSStatusMessage is one frame on the automation status websocket.
type WSStatusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	State   string `json:"state,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
}

func sendJSON(ws *websocket.Conn, v any) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleRunWebSocket feeds run status lines over a websocket.
//
// On connect the client receives a connected frame with the current
// run state. The handler then forwards queued status lines on a 1 s
// tick and closes after delivering the terminal result. Reads are
// discarded; the feed is one-way.
func HandleRunWebSocket(runner *automation.Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("Automation websocket client connected")

		if err := sendJSON(ws, WSStatusMessage{
			Type:  "connected",
			State: runner.State().String(),
		}); err != nil {
			return
		}

		// Discard inbound frames; a read error means the client left.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(streamPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-clientGone:
				slog.Info("Automation websocket client disconnected")
				return
			case <-c.Request.Context().Done():
				return
			case <-ticker.C:
				for {
					line, ok := runner.PollStatus()
					if !ok {
						break
					}
					if err := sendJSON(ws, WSStatusMessage{
						Type:    "status",
						Message: line,
						State:   runner.State().String(),
					}); err != nil {
						return
					}
				}

				if result, ok := runner.PollResult(); ok {
					_ = sendJSON(ws, WSStatusMessage{
						Type:   "result",
						State:  runner.State().String(),
						Result: result,
					})
					return
				}

				if !runner.Active() {
					_ = sendJSON(ws, WSStatusMessage{Type: "idle", State: runner.State().String()})
					return
				}
			}
		}
	}
}
