// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"fmt"
	"os"
	"strings"

	"github.com/awnumar/memguard"
)

// Credentials holds tracker connection settings.
//
// The API token is kept in a memguard enclave rather than a plain string:
// the token is encrypted at rest in process memory and only decrypted into
// a locked buffer for the instant a request is signed. BaseURL and Email
// are not sensitive and stay as ordinary fields.
//
// # Thread Safety
//
// Safe for concurrent use. Enclave opens are independent per call.
type Credentials struct {
	// BaseURL is the tracker root, e.g. "https://yourteam.atlassian.net".
	// Stored without a trailing slash.
	BaseURL string

	// Email is the account the API token belongs to.
	Email string

	token *memguard.Enclave
}

// NewCredentials builds Credentials with the token sealed in an enclave.
//
// The token string passed in cannot be wiped (Go strings are immutable),
// but the sealed copy is the only one this package retains.
func NewCredentials(baseURL, email, token string) *Credentials {
	creds := &Credentials{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Email:   email,
	}
	if token != "" {
		creds.token = memguard.NewEnclave([]byte(token))
	}
	return creds
}

// CredentialsFromEnv loads credentials from the environment.
//
// The lowercase names match the .env convention this tool's users already
// have (jira_base_url, jira_email, jira_api_token with jira_key as a
// legacy fallback); uppercase synonyms are accepted for container
// deployments that follow the usual convention.
func CredentialsFromEnv() *Credentials {
	baseURL := envFirst("jira_base_url", "JIRA_BASE_URL")
	email := envFirst("jira_email", "JIRA_EMAIL")
	token := envFirst("jira_api_token", "jira_key", "JIRA_API_TOKEN")
	return NewCredentials(baseURL, email, token)
}

// Configured reports whether all three connection settings are present.
func (c *Credentials) Configured() bool {
	return c != nil && c.BaseURL != "" && c.Email != "" && c.token != nil
}

// Token decrypts the sealed API token and returns a copy.
//
// The enclave is opened into a locked buffer, copied out, and destroyed
// before returning. Callers should not retain the returned string longer
// than the request that needs it.
func (c *Credentials) Token() (string, error) {
	if c == nil || c.token == nil {
		return "", fmt.Errorf("no tracker API token configured")
	}
	buf, err := c.token.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open token enclave: %w", err)
	}
	defer buf.Destroy()
	return string(buf.Bytes()), nil
}

// envFirst returns the first non-empty value among the named variables.
func envFirst(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
