// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	demoStepDelay    = 2 * time.Second
	taskExcerptRunes = 200
)

var demoStatusLines = []string{
	"Navigating to target URL...",
	"Analyzing page structure...",
	"Identifying test elements...",
	"Executing test steps...",
	"Capturing screenshots...",
	"Test execution completed!",
}

// DemoAgent simulates an automation run. It emits the canned status
// lines on a fixed cadence and returns a result that makes clear no
// browser was driven.
type DemoAgent struct {
	stepDelay time.Duration
}

// NewDemoAgent returns a demo agent with the production step cadence.
func NewDemoAgent() *DemoAgent {
	return &DemoAgent{stepDelay: demoStepDelay}
}

// Run implements the Agent interface.
func (d *DemoAgent) Run(ctx context.Context, task Task, status StatusFunc) (string, error) {
	for _, line := range demoStatusLines {
		if status != nil {
			status(line)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("demo run aborted: %w", ctx.Err())
		case <-time.After(d.stepDelay):
		}
	}

	return demoResult(task), nil
}

func demoResult(task Task) string {
	var b strings.Builder
	b.WriteString("Demo Test Automation Results:\n\n")
	fmt.Fprintf(&b, "Target URL: %s\n", task.TargetURL)
	fmt.Fprintf(&b, "Automation Task: %s\n\n", taskExcerpt(task.Instructions))
	b.WriteString("Simulated Test Execution:\n")
	b.WriteString("1. Successfully navigated to the target website\n")
	b.WriteString("2. Analyzed the page structure and identified interactive elements\n")
	b.WriteString("3. Executed the defined test steps systematically\n")
	b.WriteString("4. Captured screenshots at each major step\n")
	b.WriteString("5. Documented the test results and any issues found\n\n")
	b.WriteString("Status: Completed (Demo Mode)\n")
	b.WriteString("Note: This is a demonstration. Configure a BrowserClark endpoint and DeepSeek API key for real automation.")
	return b.String()
}

func taskExcerpt(instructions string) string {
	runes := []rune(instructions)
	if utf8.RuneCountInString(instructions) <= taskExcerptRunes {
		return instructions
	}
	return string(runes[:taskExcerptRunes]) + "..."
}

// Compile-time interface compliance check.
var _ Agent = (*DemoAgent)(nil)
