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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianQA/services/orchestrator/datatypes"
)

// =============================================================================
// Interface Definition
// =============================================================================

// SSEWriter writes Server-Sent Events to an HTTP response.
//
// # Description
//
// Abstracts SSE event serialization and writing so streaming handlers
// stay testable. Implementations handle the SSE wire format
// (event: type\ndata: json\n\n) and flush after every event.
//
// Each event is automatically assigned:
//   - Id: UUID v4 for ordering and deduplication
//   - CreatedAt: Unix timestamp in milliseconds
//   - Hash: SHA-256 hash of event content for integrity
//   - PrevHash: hash of the previous event for chain verification
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
//
// # Assumptions
//
//   - Caller has set Content-Type: text/event-stream before writing
type SSEWriter interface {
	// WriteEvent writes a single SSE event, populating Id, CreatedAt,
	// Hash, and PrevHash, and flushes immediately.
	WriteEvent(event datatypes.StreamEvent) error

	// WriteStatus writes a status event carrying one run status line.
	WriteStatus(runID, message string) error

	// WriteResult writes the terminal run result event.
	WriteResult(runID string, result any) error

	// WriteError writes an error event. The stream should be closed
	// after an error.
	WriteError(errMsg string) error

	// WriteDone writes the final event of the stream.
	WriteDone(runID string) error

	// WriteKeepAlive sends an SSE comment to keep the connection alive
	// while the run is quiet. Comments do not join the hash chain.
	WriteKeepAlive() error
}

// =============================================================================
// Implementation
// =============================================================================

// sseWriter implements SSEWriter over an http.ResponseWriter.
//
// The writer maintains a hash chain: each event's Hash is SHA-256 of
// its content and each PrevHash links to the event before it, giving
// clients a chain of custody over status lines and results.
type sseWriter struct {
	writer   http.ResponseWriter
	flusher  http.Flusher
	prevHash string
	mu       sync.Mutex
}

// NewSSEWriter creates an SSEWriter for the given ResponseWriter.
// Returns an error when the writer does not support flushing.
func NewSSEWriter(w http.ResponseWriter) (SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("ResponseWriter does not support http.Flusher")
	}
	return &sseWriter{writer: w, flusher: flusher}, nil
}

// SetSSEHeaders sets the response headers for an SSE stream.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteEvent writes a single SSE event and advances the hash chain.
func (w *sseWriter) WriteEvent(event datatypes.StreamEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event.Id = uuid.New().String()
	event.CreatedAt = time.Now().UnixMilli()
	event.PrevHash = w.prevHash
	event.Hash = computeEventHash(event)
	w.prevHash = event.Hash

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(w.writer, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	w.flusher.Flush()
	return nil
}

// computeEventHash hashes the event content fields. The Result payload
// is JSON-serialized so the chain covers the terminal result too.
func computeEventHash(event datatypes.StreamEvent) string {
	resultJSON := ""
	if event.Result != nil {
		if data, err := json.Marshal(event.Result); err == nil {
			resultJSON = string(data)
		}
	}

	hashInput := fmt.Sprintf("%s|%s|%d|%s|%s|%s|%s|%s",
		event.Id,
		event.Type,
		event.CreatedAt,
		event.PrevHash,
		event.Message,
		event.Error,
		event.RunId,
		resultJSON,
	)

	hash := sha256.Sum256([]byte(hashInput))
	return hex.EncodeToString(hash[:])
}

// WriteStatus writes a status event carrying one run status line.
func (w *sseWriter) WriteStatus(runID, message string) error {
	return w.WriteEvent(datatypes.StreamEvent{
		Type:    datatypes.StreamEventStatus,
		RunId:   runID,
		Message: message,
	})
}

// WriteResult writes the terminal run result event.
func (w *sseWriter) WriteResult(runID string, result any) error {
	return w.WriteEvent(datatypes.StreamEvent{
		Type:   datatypes.StreamEventResult,
		RunId:  runID,
		Result: result,
	})
}

// WriteError writes an error event.
func (w *sseWriter) WriteError(errMsg string) error {
	return w.WriteEvent(datatypes.StreamEvent{
		Type:  datatypes.StreamEventError,
		Error: errMsg,
	})
}

// WriteDone writes the final event of the stream.
func (w *sseWriter) WriteDone(runID string) error {
	return w.WriteEvent(datatypes.StreamEvent{
		Type:  datatypes.StreamEventDone,
		RunId: runID,
	})
}

// WriteKeepAlive sends an SSE comment line.
func (w *sseWriter) WriteKeepAlive() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprint(w.writer, ": ping\n\n"); err != nil {
		return fmt.Errorf("write keepalive: %w", err)
	}
	w.flusher.Flush()
	return nil
}

var _ SSEWriter = (*sseWriter)(nil)
