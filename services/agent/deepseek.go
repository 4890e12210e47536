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
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	deepseekBaseURL = "https://api.deepseek.com/v1"
	deepseekModel   = "deepseek-chat"

	refineSystemPrompt = "You are a QA automation expert. Rewrite the browser automation " +
		"instructions you are given so they are precise, unambiguous, and executable by an " +
		"AI browser agent. Keep every step and constraint, remove filler, and return only " +
		"the rewritten instructions."
)

// DeepSeekClient refines automation tasks with the DeepSeek chat model.
// Refinement is best effort: any failure falls back to the original task.
type DeepSeekClient struct {
	client *openai.Client
	model  string
}

// NewDeepSeekClient builds a client from DEEPSEEK_API_KEY, falling back
// to the Podman secret when the variable is unset.
func NewDeepSeekClient() (*DeepSeekClient, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/deepseek_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the DeepSeek API Key from Podman Secrets")
		} else {
			slog.Error("DEEPSEEK_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
		}
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	slog.Info("Initializing DeepSeek client", "model", deepseekModel)
	return &DeepSeekClient{
		client: openai.NewClientWithConfig(config),
		model:  deepseekModel,
	}, nil
}

// RefineTask tightens the automation instructions with one chat
// completion. On any failure the original task is returned unchanged.
func (d *DeepSeekClient) RefineTask(ctx context.Context, task string) string {
	req := openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: refineSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: task},
		},
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Warn("Task refinement failed, using the original task.", "error", err)
		return task
	}
	if len(resp.Choices) == 0 {
		slog.Warn("DeepSeek returned no choices, using the original task.")
		return task
	}

	refined := strings.TrimSpace(resp.Choices[0].Message.Content)
	if refined == "" {
		slog.Warn("DeepSeek returned empty content, using the original task.")
		return task
	}

	slog.Debug("Refined automation task", "finish_reason", resp.Choices[0].FinishReason)
	return refined
}
