// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the SSE writer

package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
)

// parseSSEEvents extracts the data payloads from an SSE body.
func parseSSEEvents(t *testing.T, body string) []datatypes.StreamEvent {
	t.Helper()
	var events []datatypes.StreamEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event datatypes.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}
	return events
}

func TestNewSSEWriter_RequiresFlusher(t *testing.T) {
	// httptest.ResponseRecorder implements http.Flusher.
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)
	assert.NotNil(t, writer)
}

func TestWriteStatus_WireFormat(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, writer.WriteStatus("run-1", "Opening browser"))

	body := w.Body.String()
	assert.Contains(t, body, "event: status\n")
	assert.Contains(t, body, "data: ")
	assert.True(t, strings.HasSuffix(body, "\n\n"))

	events := parseSSEEvents(t, body)
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.StreamEventStatus, events[0].Type)
	assert.Equal(t, "Opening browser", events[0].Message)
	assert.Equal(t, "run-1", events[0].RunId)
	assert.NotEmpty(t, events[0].Id)
	assert.NotZero(t, events[0].CreatedAt)
}

func TestWriteEvent_HashChain(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, writer.WriteStatus("run-1", "step one"))
	require.NoError(t, writer.WriteStatus("run-1", "step two"))
	require.NoError(t, writer.WriteDone("run-1"))

	events := parseSSEEvents(t, w.Body.String())
	require.Len(t, events, 3)

	assert.Empty(t, events[0].PrevHash, "First event starts the chain")
	assert.NotEmpty(t, events[0].Hash)
	assert.Equal(t, events[0].Hash, events[1].PrevHash)
	assert.Equal(t, events[1].Hash, events[2].PrevHash)

	seen := map[string]bool{}
	for _, event := range events {
		assert.Len(t, event.Hash, 64, "Expected hex-encoded SHA-256")
		assert.False(t, seen[event.Hash], "Hashes must be unique")
		seen[event.Hash] = true
	}
}

func TestWriteResult_CoversPayload(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, writer.WriteResult("run-1", map[string]any{"success": true}))

	body := w.Body.String()
	assert.Contains(t, body, "event: result\n")

	events := parseSSEEvents(t, body)
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.StreamEventResult, events[0].Type)
	assert.NotNil(t, events[0].Result)
}

func TestWriteError_WireFormat(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, writer.WriteError("agent unavailable"))

	events := parseSSEEvents(t, w.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, datatypes.StreamEventError, events[0].Type)
	assert.Equal(t, "agent unavailable", events[0].Error)
}

func TestWriteKeepAlive_CommentOnly(t *testing.T) {
	w := httptest.NewRecorder()
	writer, err := NewSSEWriter(w)
	require.NoError(t, err)

	require.NoError(t, writer.WriteKeepAlive())

	body := w.Body.String()
	assert.Equal(t, ": ping\n\n", body)
	assert.Empty(t, parseSSEEvents(t, body), "Keepalives carry no data payload")
}

func TestSetSSEHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetSSEHeaders(w)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}
