// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines interfaces for enterprise functionality.
//
// This package provides extension points that allow AleutianEnterprise
// to add capabilities without modifying the core AleutianQA codebase.
// The open source version uses no-op defaults for all interfaces.
//
// # Design Philosophy
//
// AleutianQA is designed as a fully functional local QA utility that
// works against a team's own tracker without any enterprise dependencies.
// Enterprise features are implemented by providing concrete implementations
// of these interfaces and injecting them via ServiceOptions.
//
// # Extension Categories
//
// The package is organized by domain:
//
//   - auth.go: Authentication and authorization (AuthProvider, AuthzProvider)
//   - audit.go: Compliance audit logging (AuditLogger)
//   - filter.go: Task and result transformation, PII redaction (TaskFilter)
//   - classifier.go: Sensitivity classification of outbound content (DataClassifier)
//
// # Usage in AleutianQA (Open Source)
//
// The open source version uses no-op implementations:
//
//	opts := extensions.DefaultOptions()
//	service := orchestrator.New(config, opts)
//
// # Usage in AleutianEnterprise
//
// Enterprise provides concrete implementations:
//
//	opts := extensions.ServiceOptions{
//	    AuthProvider: enterprise.NewOktaProvider(config),
//	    AuditLogger:  enterprise.NewSplunkAuditor(config),
//	    TaskFilter:   enterprise.NewPIIFilter(policy),
//	}
//	service := orchestrator.New(config, opts)
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
// Multiple goroutines may call methods simultaneously.
package extensions

// ServiceOptions groups all extension points for service configuration.
//
// Pass this to service constructors to enable enterprise features.
// All fields are optional; nil values are replaced with no-op defaults
// when DefaultOptions() is called or when services check for nil.
//
// Example:
//
//	// Open source: use defaults
//	opts := extensions.DefaultOptions()
//
//	// Enterprise: inject implementations
//	opts := extensions.ServiceOptions{
//	    AuthProvider: oktaProvider,
//	    AuditLogger:  splunkAuditor,
//	    TaskFilter:   piiFilter,
//	}
type ServiceOptions struct {
	// AuthProvider validates authentication tokens.
	// Default: NopAuthProvider (always returns valid local user)
	AuthProvider AuthProvider

	// AuthzProvider checks authorization permissions.
	// Default: NopAuthzProvider (always allows all actions)
	AuthzProvider AuthzProvider

	// AuditLogger records security-relevant events.
	// Default: NopAuditLogger (discards all events)
	AuditLogger AuditLogger

	// TaskFilter transforms agent task text and agent results.
	// Default: NopTaskFilter (passes through unchanged)
	TaskFilter TaskFilter

	// DataClassifier scans outbound content for sensitive data before it
	// leaves the process (agent tasks, tracker payloads).
	// Default: NopDataClassifier (always reports clean)
	DataClassifier DataClassifier
}

// DefaultOptions returns ServiceOptions with no-op defaults.
//
// This is the configuration used by the open source version.
// All operations are allowed, no audit trail, no filtering.
//
// Returns:
//   - ServiceOptions with all fields set to no-op implementations
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider:   &NopAuthProvider{},
		AuthzProvider:  &NopAuthzProvider{},
		AuditLogger:    &NopAuditLogger{},
		TaskFilter:     &NopTaskFilter{},
		DataClassifier: &NopDataClassifier{},
	}
}

// WithAuth returns a copy of opts with the given AuthProvider.
// Useful for fluent configuration.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAuthz returns a copy of opts with the given AuthzProvider.
func (opts ServiceOptions) WithAuthz(provider AuthzProvider) ServiceOptions {
	opts.AuthzProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}

// WithFilter returns a copy of opts with the given TaskFilter.
func (opts ServiceOptions) WithFilter(filter TaskFilter) ServiceOptions {
	opts.TaskFilter = filter
	return opts
}

// WithClassifier returns a copy of opts with the given DataClassifier.
func (opts ServiceOptions) WithClassifier(classifier DataClassifier) ServiceOptions {
	opts.DataClassifier = classifier
	return opts
}
