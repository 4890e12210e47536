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

import "context"

// =============================================================================
// Data Classification Types
// =============================================================================

// DataClassification represents the sensitivity level of data.
//
// Classifications follow common enterprise data handling policies and align
// with regulatory requirements (GDPR, HIPAA, CCPA). Higher levels require
// stricter handling controls.
//
// Example:
//
//	switch classification {
//	case ClassificationSecret:
//	    // Encrypt, audit access, restrict to need-to-know
//	case ClassificationPII:
//	    // Redact in logs, apply retention policies
//	case ClassificationConfidential:
//	    // Internal use only, no external sharing
//	case ClassificationPublic:
//	    // Safe to share externally
//	}
type DataClassification string

const (
	// ClassificationPublic indicates data that can be freely shared.
	// Examples: public documentation, synthetic test data, open source code.
	ClassificationPublic DataClassification = "PUBLIC"

	// ClassificationConfidential indicates internal-only data.
	// Examples: unreleased feature descriptions, internal staging URLs.
	ClassificationConfidential DataClassification = "CONFIDENTIAL"

	// ClassificationPII indicates personally identifiable information.
	// Examples: names, email addresses, phone numbers, IP addresses.
	// Requires special handling under GDPR, CCPA, and similar regulations.
	ClassificationPII DataClassification = "PII"

	// ClassificationSecret indicates highly sensitive data.
	// Examples: API keys, real account passwords, encryption keys.
	// Requires encryption at rest and in transit, strict access controls.
	ClassificationSecret DataClassification = "SECRET"
)

// ClassificationResult contains the outcome of data classification.
//
// A single piece of data may contain multiple classifications (e.g., a task
// with both PII and confidential staging URLs). The HighestLevel field
// provides a single value for quick policy decisions.
//
// Example:
//
//	result, _ := classifier.Classify(ctx, taskText)
//	if result.HighestLevel == ClassificationSecret {
//	    log.Warn("secret data in outbound task", "findings", len(result.Findings))
//	    return errors.New("cannot send secrets to external agent")
//	}
type ClassificationResult struct {
	// HighestLevel is the most sensitive classification found.
	// Use this for quick policy decisions (e.g., block if SECRET).
	HighestLevel DataClassification

	// Findings lists all detected sensitive data with details.
	// May be empty if nothing sensitive was found (HighestLevel == PUBLIC).
	Findings []ClassificationFinding

	// IsClean is true if no sensitive data was detected.
	// Equivalent to HighestLevel == ClassificationPublic && len(Findings) == 0.
	IsClean bool
}

// ClassificationFinding describes a single piece of classified data.
//
// Example:
//
//	finding := ClassificationFinding{
//	    Classification: ClassificationPII,
//	    Type:           "email",
//	    Location:       "line 5, characters 10-30",
//	    Pattern:        "email_regex",
//	    Snippet:        "user@exa...",  // Truncated for logging
//	}
type ClassificationFinding struct {
	// Classification is the sensitivity level of this finding.
	Classification DataClassification

	// Type describes what kind of data was found.
	// Examples: "ssn", "credit_card", "email", "api_key", "password"
	Type string

	// Location describes where in the content the data was found.
	// Format is implementation-specific (e.g., "line 5", "offset 100-120").
	Location string

	// Pattern identifies which detection rule matched.
	// Useful for debugging and tuning classification rules.
	// Examples: "ssn_regex", "credit_card_luhn", "api_key_entropy"
	Pattern string

	// Snippet is a truncated/redacted portion of the matched content.
	// Used for audit logs without exposing full sensitive data.
	// Should be safe to log (first/last few characters only).
	Snippet string
}

// =============================================================================
// DataClassifier Interface
// =============================================================================

// DataClassifier scans data to determine its sensitivity classification.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Open Source Behavior
//
// The default NopDataClassifier always returns PUBLIC classification,
// indicating no sensitive data was detected. This allows the local tool
// to function without classification infrastructure.
//
// # Enterprise Implementation
//
// Enterprise versions implement pattern-based detection using:
//   - Regular expressions for known formats (SSN, credit cards, etc.)
//   - Entropy analysis for secrets (API keys, passwords)
//   - Machine learning for context-aware PII detection
//   - Custom patterns for organization-specific data
//
// # Usage
//
// Classify content before it leaves the process. Automation tasks are the
// main call site: feature descriptions and test data get composed into a
// task that is handed to an external browser agent, and deployments with
// data handling policies want to know what is in it first:
//
//	result, err := classifier.Classify(ctx, task.Text)
//	if err != nil {
//	    return fmt.Errorf("classification failed: %w", err)
//	}
//	if result.HighestLevel == ClassificationSecret {
//	    return errors.New("cannot send tasks containing secrets")
//	}
//
// # Limitations
//
//   - Pattern-based detection has false positives/negatives
//   - Context matters: "123-45-6789" could be SSN or order number
//   - New data formats require pattern updates
//
// # Assumptions
//
//   - Content is UTF-8 encoded text
//   - Classifications are hierarchical (SECRET > PII > CONFIDENTIAL > PUBLIC)
type DataClassifier interface {
	// Classify analyzes content and returns its sensitivity classification.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control.
	//   - content: The text to classify. May be any length.
	//
	// Returns:
	//   - *ClassificationResult: Classification details, never nil on success.
	//   - error: Non-nil if classification failed (e.g., timeout, invalid input).
	Classify(ctx context.Context, content string) (*ClassificationResult, error)

	// ClassifyBatch analyzes multiple content items efficiently.
	//
	// Implementations may process items in parallel for better performance.
	// Results are returned in the same order as the input.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control.
	//   - contents: Slice of content items to classify.
	//
	// Returns:
	//   - []*ClassificationResult: Results in same order as input.
	//   - error: Non-nil if any classification failed.
	ClassifyBatch(ctx context.Context, contents []string) ([]*ClassificationResult, error)
}

// =============================================================================
// No-Op Implementation
// =============================================================================

// NopDataClassifier is the default classifier for open source.
//
// It always returns PUBLIC classification with no findings, indicating
// no sensitive data was detected. This allows the tool to function
// without classification infrastructure.
//
// Thread-safe: This implementation has no mutable state.
//
// Example:
//
//	classifier := &NopDataClassifier{}
//	result, err := classifier.Classify(ctx, "user SSN: 123-45-6789")
//	// result.HighestLevel == ClassificationPublic
//	// result.IsClean == true
//	// result.Findings == nil
//	// err == nil
type NopDataClassifier struct{}

// Classify always returns PUBLIC classification with no findings.
//
// Content is not analyzed. This is intentional for local single-user
// deployments where data classification isn't required.
func (c *NopDataClassifier) Classify(_ context.Context, _ string) (*ClassificationResult, error) {
	return &ClassificationResult{
		HighestLevel: ClassificationPublic,
		Findings:     nil,
		IsClean:      true,
	}, nil
}

// ClassifyBatch always returns PUBLIC classification for all items.
//
// The contents slice is used only to determine the result length.
func (c *NopDataClassifier) ClassifyBatch(_ context.Context, contents []string) ([]*ClassificationResult, error) {
	results := make([]*ClassificationResult, len(contents))
	for i := range contents {
		results[i] = &ClassificationResult{
			HighestLevel: ClassificationPublic,
			Findings:     nil,
			IsClean:      true,
		}
	}
	return results, nil
}

// =============================================================================
// Interface Compliance
// =============================================================================

// Compile-time interface compliance check.
var _ DataClassifier = (*NopDataClassifier)(nil)
