// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	sessionsPath = "/v1/sessions"

	// defaultPollInterval paces session polling. Browser runs take tens
	// of seconds, so two seconds keeps status fresh without hammering
	// the agent endpoint.
	defaultPollInterval = 2 * time.Second

	sessionStateRunning   = "running"
	sessionStateCompleted = "completed"
	sessionStateFailed    = "failed"
)

type createSessionRequest struct {
	Task     string           `json:"task"`
	LLM      sessionLLMConfig `json:"llm"`
	Headless bool             `json:"headless"`
}

type sessionLLMConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

type sessionStatusResponse struct {
	State      string `json:"state"`
	StatusLine string `json:"status_line"`
	Output     string `json:"output"`
}

// --- Client Implementation ---

// BrowserClarkClient runs automation tasks on a BrowserClark endpoint.
//
// The endpoint spins up a browser session driven by a DeepSeek model,
// streams progress through a status line, and reports a terminal state
// with the agent's result text.
type BrowserClarkClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	llmAPIKey    string
	model        string
	pollInterval time.Duration
}

// NewBrowserClarkClient builds a client from the environment.
//
// BROWSERCLARK_URL names the endpoint and DEEPSEEK_API_KEY supplies the
// model key the endpoint drives the browser with. Returns an error when
// either is missing so callers can fall back to the demo agent instead
// of launching sessions that cannot run.
func NewBrowserClarkClient() (*BrowserClarkClient, error) {
	baseURL := strings.TrimSuffix(os.Getenv("BROWSERCLARK_URL"), "/")
	if baseURL == "" {
		slog.Warn("BROWSERCLARK_URL not set, browser automation unavailable.")
		return nil, fmt.Errorf("browser agent endpoint not configured")
	}

	llmAPIKey := os.Getenv("DEEPSEEK_API_KEY")
	if llmAPIKey == "" {
		secretPath := "/run/secrets/deepseek_api_key"
		keyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			llmAPIKey = strings.TrimSpace(string(keyBytes))
			slog.Info("Read the DeepSeek API Key from Podman Secrets")
		} else {
			slog.Warn("DEEPSEEK_API_KEY not set and secret not found, browser automation unavailable.", "path", secretPath)
			return nil, fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
		}
	}

	return &BrowserClarkClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		apiKey:       os.Getenv("BROWSERCLARK_API_KEY"),
		llmAPIKey:    llmAPIKey,
		model:        deepseekModel,
		pollInterval: defaultPollInterval,
	}, nil
}

// Run implements the Agent interface. It creates one session, polls it
// until a terminal state, and forwards every new status line. Context
// cancellation aborts the poll loop; the remote session is left to
// finish on its own.
func (c *BrowserClarkClient) Run(ctx context.Context, task Task, status StatusFunc) (string, error) {
	sessionID, err := c.createSession(ctx, task)
	if err != nil {
		return "", err
	}

	slog.Info("Started browser automation session", "session_id", sessionID, "feature", task.FeatureTitle)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	lastLine := ""
	for {
		snap, err := c.fetchSession(ctx, sessionID)
		if err != nil {
			return "", err
		}

		if snap.StatusLine != "" && snap.StatusLine != lastLine {
			lastLine = snap.StatusLine
			if status != nil {
				status(snap.StatusLine)
			}
		}

		switch snap.State {
		case sessionStateCompleted:
			slog.Info("Browser automation session completed", "session_id", sessionID)
			return snap.Output, nil
		case sessionStateFailed:
			detail := snap.Output
			if detail == "" {
				detail = snap.StatusLine
			}
			return "", fmt.Errorf("automation session %s failed: %s", sessionID, detail)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("automation session %s aborted: %w", sessionID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *BrowserClarkClient) createSession(ctx context.Context, task Task) (string, error) {
	payload := createSessionRequest{
		Task: task.Instructions,
		LLM: sessionLLMConfig{
			Provider: "deepseek",
			Model:    c.model,
			APIKey:   c.llmAPIKey,
		},
		Headless: task.Headless,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session payload: %w", err)
	}

	body, statusCode, err := c.do(ctx, http.MethodPost, sessionsPath, payloadBytes)
	if err != nil {
		return "", err
	}
	if statusCode != http.StatusCreated {
		return "", fmt.Errorf("browser agent returned status %d creating session: %s", statusCode, string(body))
	}

	var created createSessionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to parse session response: %w", err)
	}
	if created.SessionID == "" {
		return "", fmt.Errorf("browser agent returned no session id")
	}

	return created.SessionID, nil
}

func (c *BrowserClarkClient) fetchSession(ctx context.Context, sessionID string) (*sessionStatusResponse, error) {
	body, statusCode, err := c.do(ctx, http.MethodGet, sessionsPath+"/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	if statusCode != http.StatusOK {
		return nil, fmt.Errorf("browser agent returned status %d polling session %s: %s", statusCode, sessionID, string(body))
	}

	var snap sessionStatusResponse
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse session status: %w", err)
	}
	return &snap, nil
}

// do issues one authenticated request and returns the body.
func (c *BrowserClarkClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	slog.Debug("Sending browser agent request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Compile-time interface compliance check.
var _ Agent = (*BrowserClarkClient)(nil)
