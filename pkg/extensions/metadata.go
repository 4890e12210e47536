// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import "time"

// =============================================================================
// Metadata Type
// =============================================================================

// Metadata stores arbitrary key-value pairs for context and logging.
//
// Using a defined type rather than map[string]any provides:
//   - Clearer intent in function signatures
//   - Ability to add methods for type-safe access
//   - Compile-time distinction from arbitrary maps
//   - Self-documenting code
//
// # Common Keys
//
// While Metadata is flexible, these keys are commonly used:
//   - "run_id": Automation run identifier
//   - "issue_key": Tracker issue key
//   - "request_id": Request correlation ID
//   - "user_id": User performing the action
//   - "agent_mode": "real" or "demo"
//   - "error": Error message if applicable
//   - "ip_address": Client IP address
//   - "user_agent": Client identifier
//   - "duration_ms": Operation duration
//
// # Thread Safety
//
// Metadata is NOT thread-safe. Do not share a single Metadata instance
// across goroutines without external synchronization.
//
// Example:
//
//	meta := extensions.NewMetadata().
//	    Set("run_id", runID).
//	    Set("issue_key", "QA-123").
//	    Set("duration_ms", 150)
//
//	// Type-safe access
//	if issueKey, ok := meta.GetString("issue_key"); ok {
//	    log.Info("run", "issue", issueKey)
//	}
type Metadata map[string]any

// NewMetadata creates an empty Metadata instance.
//
// This is the preferred way to create Metadata instances. The returned
// map is ready for use and not thread-safe.
func NewMetadata() Metadata {
	return make(Metadata)
}

// Set adds or updates a key-value pair and returns the Metadata for chaining.
//
// Example:
//
//	meta := NewMetadata().
//	    Set("run_id", "run-123").
//	    Set("user_id", "user-456").
//	    Set("timestamp", time.Now())
func (m Metadata) Set(key string, value any) Metadata {
	m[key] = value
	return m
}

// Get retrieves a value by key.
//
// Returns the value associated with the key and a boolean indicating
// whether the key exists.
func (m Metadata) Get(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// GetString retrieves a string value by key.
//
// Type-safe accessor for string values. Returns the string and true
// if the key exists and the value is a string, otherwise returns
// empty string and false.
//
// Example:
//
//	if issueKey, ok := meta.GetString("issue_key"); ok {
//	    log.Info("issue", "key", issueKey)
//	}
func (m Metadata) GetString(key string) (string, bool) {
	value, ok := m[key]
	if !ok {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetInt retrieves an int value by key.
//
// Returns the int and true if the key exists and the value is an int,
// otherwise returns 0 and false.
func (m Metadata) GetInt(key string) (int, bool) {
	value, ok := m[key]
	if !ok {
		return 0, false
	}
	i, ok := value.(int)
	return i, ok
}

// GetInt64 retrieves an int64 value by key.
//
// Returns the int64 and true if the key exists and the value is an
// int64, otherwise returns 0 and false.
func (m Metadata) GetInt64(key string) (int64, bool) {
	value, ok := m[key]
	if !ok {
		return 0, false
	}
	i, ok := value.(int64)
	return i, ok
}

// GetFloat64 retrieves a float64 value by key.
//
// Returns the float64 and true if the key exists and the value is a
// float64, otherwise returns 0 and false.
func (m Metadata) GetFloat64(key string) (float64, bool) {
	value, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := value.(float64)
	return f, ok
}

// GetBool retrieves a bool value by key.
//
// Returns the bool and true if the key exists and the value is a bool,
// otherwise returns false and false.
func (m Metadata) GetBool(key string) (bool, bool) {
	value, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}

// GetTime retrieves a time.Time value by key.
//
// Returns the time and true if the key exists and the value is a
// time.Time, otherwise returns zero time and false.
func (m Metadata) GetTime(key string) (time.Time, bool) {
	value, ok := m[key]
	if !ok {
		return time.Time{}, false
	}
	t, ok := value.(time.Time)
	return t, ok
}

// Has checks if a key exists in the Metadata.
//
// Returns true if the key exists, regardless of its value (including nil).
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Delete removes a key from the Metadata.
//
// Safe to call even if the key doesn't exist. Returns the same instance
// for chaining.
func (m Metadata) Delete(key string) Metadata {
	delete(m, key)
	return m
}

// Clone creates a shallow copy of the Metadata.
//
// Creates a new Metadata instance with the same key-value pairs.
// Values themselves are not deep-copied: if values are pointers or
// references, they will point to the same underlying data.
//
// Example:
//
//	original := NewMetadata().Set("key", "value")
//	copy := original.Clone()
//	copy.Set("key", "modified")  // original unchanged
func (m Metadata) Clone() Metadata {
	clone := make(Metadata, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

// Merge copies all key-value pairs from another Metadata into this one.
//
// Adds all entries from the other Metadata. Existing keys are overwritten.
// A nil other is a no-op. Returns the same instance for chaining.
//
// Example:
//
//	base := NewMetadata().Set("env", "staging")
//	extra := NewMetadata().Set("version", "1.0")
//	base.Merge(extra)
//	// base now has both "env" and "version"
func (m Metadata) Merge(other Metadata) Metadata {
	if other == nil {
		return m
	}
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Keys returns all keys in the Metadata.
//
// Order is not guaranteed.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of key-value pairs.
func (m Metadata) Len() int {
	return len(m)
}
