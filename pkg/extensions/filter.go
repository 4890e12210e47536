// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"errors"
)

// ErrTaskBlocked is returned when task content is rejected by the filter.
// Enterprise implementations should wrap this error with the reason.
//
// Example:
//
//	if containsProductionCreds(task) {
//	    return "", fmt.Errorf("task contains production credentials: %w", ErrTaskBlocked)
//	}
var ErrTaskBlocked = errors.New("task blocked by filter")

// FilterResult contains the outcome of a filter operation.
//
// This struct provides detailed information about what the filter did,
// useful for debugging, audit trails, and user feedback.
//
// Example:
//
//	result := FilterResult{
//	    Original:    "Log in with SSN 123-45-6789",
//	    Filtered:    "Log in with SSN [REDACTED]",
//	    WasModified: true,
//	    Detections: []Detection{
//	        {Type: "ssn", Location: "position 16-27", Action: "redacted"},
//	    },
//	}
type FilterResult struct {
	// Original is the input text before filtering.
	Original string

	// Filtered is the text after filtering transformations.
	// If WasModified is false, this equals Original.
	Filtered string

	// WasModified indicates if any transformations were applied.
	WasModified bool

	// WasBlocked indicates if the content was completely rejected.
	// If true, Filtered should not be used.
	WasBlocked bool

	// BlockReason explains why the content was blocked (if WasBlocked).
	BlockReason string

	// Detections lists what the filter found in the content.
	// Useful for audit logging and debugging.
	Detections []Detection
}

// Detection describes a single item found by the filter.
//
// Example:
//
//	detection := Detection{
//	    Type:     "credit_card",
//	    Location: "characters 45-64",
//	    Action:   "redacted",
//	    Original: "4111-1111-1111-1111",  // Only in debug mode
//	}
type Detection struct {
	// Type categorizes what was detected.
	// Common types: "ssn", "credit_card", "email", "phone", "api_key",
	// "password", "pii", "secret", "prompt_injection"
	Type string

	// Location describes where in the content the item was found.
	// Format is implementation-specific (e.g., "characters 10-20", "line 3")
	Location string

	// Action describes what was done with the detected item.
	// Values: "redacted", "masked", "replaced", "blocked", "flagged"
	Action string

	// Original is the detected content (only populated in debug mode).
	// WARNING: This may contain sensitive data - handle carefully.
	Original string

	// Replacement is what the content was replaced with (if Action is "replaced").
	Replacement string
}

// TaskFilter transforms content flowing between AleutianQA and external
// AI services.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Filter Pipeline
//
// Content flows through filters at two points:
//
//  1. FilterInput: Before a task is sent to a browser agent or LLM.
//     Task text often embeds test credentials, URLs, and feature
//     descriptions. Enterprise deployments redact anything that must
//     not leave the network, or block the task outright.
//
//  2. FilterOutput: Before an agent result is persisted or rendered.
//     Agent output can echo back page content, including data the
//     browser saw during the run.
//
// # Open Source Behavior
//
// The default NopTaskFilter passes all content through unchanged.
// This is appropriate for local single-user deployments where content
// filtering isn't required.
//
// # Enterprise Implementation
//
// Enterprise versions implement content policies, PII detection,
// and compliance requirements.
//
// Example enterprise implementation:
//
//	type PIIFilter struct {
//	    patterns []PIIPattern
//	}
//
//	func (f *PIIFilter) FilterInput(ctx context.Context, task string) (*FilterResult, error) {
//	    result := &FilterResult{Original: task, Filtered: task}
//
//	    for _, pattern := range f.patterns {
//	        if matches := pattern.FindAll(task); len(matches) > 0 {
//	            result.Filtered = pattern.Redact(result.Filtered)
//	            result.WasModified = true
//	            result.Detections = append(result.Detections, Detection{
//	                Type:   pattern.Name,
//	                Action: "redacted",
//	            })
//	        }
//	    }
//
//	    return result, nil
//	}
//
// # Blocking vs Transforming
//
// Filters can either:
//   - Transform: Modify content and allow it through (e.g., redact SSN)
//   - Block: Reject the entire task (e.g., policy violation)
//
// To block, return a FilterResult with WasBlocked=true and BlockReason set.
// The caller should then return ErrTaskBlocked to the user.
type TaskFilter interface {
	// FilterInput processes task text before it is sent to an external agent.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - task: The composed task text (feature description, steps, test data)
	//
	// Returns:
	//   - *FilterResult: The filtered task and metadata
	//   - error: Non-nil only for filter failures (not for blocks)
	//
	// If WasBlocked is true, the caller should:
	//  1. Log the block via AuditLogger
	//  2. Return ErrTaskBlocked to the user
	//  3. NOT send the task to the agent
	FilterInput(ctx context.Context, task string) (*FilterResult, error)

	// FilterOutput processes an agent result before it is persisted.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - result: The raw agent result text
	//
	// Returns:
	//   - *FilterResult: The filtered result and metadata
	//   - error: Non-nil only for filter failures (not for blocks)
	//
	// Common output filtering:
	//   - Remove page content the browser echoed back
	//   - Mask generated PII before it lands in reports
	FilterOutput(ctx context.Context, result string) (*FilterResult, error)
}

// NopTaskFilter is the default task filter for open source.
//
// It passes all content through unchanged without any transformation
// or blocking. This is appropriate for local single-user deployments
// where content filtering isn't required.
//
// Thread-safe: This implementation has no mutable state.
//
// Example:
//
//	filter := &NopTaskFilter{}
//	result, err := filter.FilterInput(ctx, "Log in as testuser@example.com")
//	// result.Filtered == "Log in as testuser@example.com" (unchanged)
//	// result.WasModified == false
//	// err == nil
type NopTaskFilter struct{}

// FilterInput returns the task unchanged.
//
// No transformations or blocking are applied.
func (f *NopTaskFilter) FilterInput(ctx context.Context, task string) (*FilterResult, error) {
	return &FilterResult{
		Original:    task,
		Filtered:    task,
		WasModified: false,
		WasBlocked:  false,
		Detections:  nil,
	}, nil
}

// FilterOutput returns the result unchanged.
//
// No transformations or blocking are applied.
func (f *NopTaskFilter) FilterOutput(ctx context.Context, result string) (*FilterResult, error) {
	return &FilterResult{
		Original:    result,
		Filtered:    result,
		WasModified: false,
		WasBlocked:  false,
		Detections:  nil,
	}, nil
}

// Compile-time interface compliance check.
// This ensures NopTaskFilter implements TaskFilter.
var _ TaskFilter = (*NopTaskFilter)(nil)
