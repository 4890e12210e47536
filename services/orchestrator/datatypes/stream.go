// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Stream event types emitted on /v1/automation/stream.
const (
	// StreamEventStatus carries one run status line in Message.
	StreamEventStatus = "status"

	// StreamEventResult carries the terminal run result in Result.
	StreamEventResult = "result"

	// StreamEventError signals a stream-level failure in Error.
	StreamEventError = "error"

	// StreamEventDone is the final event of a stream.
	StreamEventDone = "done"
)

// StreamEvent is one Server-Sent Event on the automation stream.
//
// Events form a hash chain: each event's Hash covers its content and
// PrevHash links to the event before it, giving clients a chain of
// custody over status lines and results. Id, CreatedAt, Hash, and
// PrevHash are populated by the SSE writer, not by callers.
type StreamEvent struct {
	Id        string `json:"id,omitempty"`
	Type      string `json:"type"`
	CreatedAt int64  `json:"created_at,omitempty"`
	Hash      string `json:"hash,omitempty"`
	PrevHash  string `json:"prev_hash,omitempty"`

	// Message holds status text for status events.
	Message string `json:"message,omitempty"`

	// Result holds the terminal RunResult for result events.
	Result any `json:"result,omitempty"`

	// Error holds a sanitized failure description for error events.
	Error string `json:"error,omitempty"`

	// RunId identifies the run the event belongs to.
	RunId string `json:"run_id,omitempty"`
}
